package service

// Task represents a single persisted to-do item.
type Task struct {
	ID        string
	Text      string
	Completed bool
	Deadline  string // ISO-8601, as entered
}

// Fields is a partial update. Nil fields are left untouched in the store.
type Fields struct {
	Text      *string
	Deadline  *string
	Completed *bool
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Text == nil && f.Deadline == nil && f.Completed == nil
}

// Paths returns the store field names set in f, in a stable order.
func (f Fields) Paths() []string {
	var paths []string
	if f.Text != nil {
		paths = append(paths, "text")
	}
	if f.Completed != nil {
		paths = append(paths, "completed")
	}
	if f.Deadline != nil {
		paths = append(paths, "deadline")
	}
	return paths
}

// Apply returns a copy of t with the set fields merged in.
func (f Fields) Apply(t Task) Task {
	if f.Text != nil {
		t.Text = *f.Text
	}
	if f.Deadline != nil {
		t.Deadline = *f.Deadline
	}
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	return t
}

// String returns a pointer to s, for building Fields.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building Fields.
func Bool(b bool) *bool { return &b }
