// Package taskfile reads and writes task lists as JSON, YAML, CSV or PDF.
package taskfile

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"countdo/internal/tasklist"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://countdo.local/schema/tasks.json"

// Record is one exported task.
type Record struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	Deadline  string `json:"deadline" yaml:"deadline"`
	State     string `json:"state" yaml:"state"`
	Remaining string `json:"remaining" yaml:"remaining"`
}

// Entry is one imported task. Other fields in the file are ignored.
type Entry struct {
	Text      string `json:"text"`
	Deadline  string `json:"deadline"`
	Completed bool   `json:"completed"`
}

// FormatFromPath guesses the format from a file extension. Unknown
// extensions default to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	case ".pdf":
		return FormatPDF
	default:
		return FormatJSON
	}
}

// Records converts views to export records.
func Records(views []tasklist.View) []Record {
	out := make([]Record, 0, len(views))
	for _, v := range views {
		out = append(out, Record{
			ID:        v.Task.ID,
			Text:      v.Task.Text,
			Completed: v.Task.Completed,
			Deadline:  v.Task.Deadline,
			State:     v.State.String(),
			Remaining: v.Remaining,
		})
	}
	return out
}

// Encode writes views to w in the given format.
func Encode(w io.Writer, format string, views []tasklist.View) error {
	records := Records(views)

	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "text", "completed", "deadline", "state", "remaining"})
		for _, r := range records {
			_ = cw.Write([]string{r.ID, r.Text, strconv.FormatBool(r.Completed), r.Deadline, r.State, r.Remaining})
		}
		cw.Flush()
		return cw.Error()
	case FormatPDF:
		return encodePDF(w, records)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

func encodePDF(w io.Writer, records []Record) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if len(records) == 0 {
		pdf.Cell(40, 6, "No tasks.")
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for i, r := range records {
		line := fmt.Sprintf("%d. [%s] %s (due %s, %s)", i+1, r.State, r.Text, r.Deadline, r.Remaining)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}
	return pdf.Output(w)
}

// SchemaError lists every problem found when validating an import file.
type SchemaError struct {
	Problems []Problem
}

// Problem is a single schema violation.
type Problem struct {
	Path    string // e.g. "/0/text"; empty for the document root
	Message string
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Path == "" {
			parts = append(parts, p.Message)
			continue
		}
		parts = append(parts, p.Path+": "+p.Message)
	}
	return "invalid task file: " + strings.Join(parts, "; ")
}

// Decode reads a JSON or YAML task file and validates it.
func Decode(r io.Reader, format string) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc any
	switch strings.ToLower(format) {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		// The validator works on JSON values.
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot import format %s", format)
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func validate(doc any) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	se := &SchemaError{}
	collectProblems(se, ve)
	return se
}

func collectProblems(se *SchemaError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		se.Problems = append(se.Problems, Problem{Path: err.InstanceLocation, Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collectProblems(se, cause)
	}
}
