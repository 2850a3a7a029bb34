// Package firestore implements the service.Service interface using the
// Cloud Firestore REST API.
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	fsapi "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"countdo/internal/config"
	"countdo/internal/logging"
	"countdo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// PageSize is the number of documents fetched per list page.
	PageSize = 300

	// Scope is the OAuth scope for Cloud Firestore.
	Scope = "https://www.googleapis.com/auth/datastore"
)

// Store field names.
const (
	fieldText      = "text"
	fieldCompleted = "completed"
	fieldDeadline  = "deadline"
)

// Location identifies the collection tasks live in.
type Location struct {
	Project    string
	Database   string
	Collection string
}

// Parent returns the documents root, projects/{p}/databases/{d}/documents.
func (l Location) Parent() string {
	return fmt.Sprintf("projects/%s/databases/%s/documents", l.Project, l.Database)
}

// Client implements service.Service using Cloud Firestore.
type Client struct {
	svc    *fsapi.Service
	where  Location
	logger *log.Logger
}

// New creates a new Firestore client.
// Requires oauth_client.json and token.json to exist, and a project to be set.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	where := Location{
		Project:    cfg.Settings.Project,
		Database:   cfg.Settings.Database,
		Collection: cfg.Settings.Collection,
	}
	if where.Project == "" {
		return nil, fmt.Errorf("%w: firestore project is not set (add project to config.toml or set COUNTDO_PROJECT)", config.ErrIncomplete)
	}

	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewWithHTTPClient(ctx, httpClient, where, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client. Extra options
// (such as option.WithEndpoint) are passed to the API service, which tests
// use to point the client at a local server.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, where Location, logger *log.Logger, opts ...option.ClientOption) (*Client, error) {
	if where.Database == "" {
		where.Database = "(default)"
	}
	if where.Collection == "" {
		where.Collection = service.DefaultCollection
	}
	if logger == nil {
		logger = logging.Discard()
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := fsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore service: %w", err)
	}
	return &Client{svc: svc, where: where, logger: logger}, nil
}

// ListAll returns every task document in the collection.
func (c *Client) ListAll(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Projects.Databases.Documents.List(c.where.Parent(), c.where.Collection).
		PageSize(PageSize).
		Pages(ctx, func(resp *fsapi.ListDocumentsResponse) error {
			for _, doc := range resp.Documents {
				result = append(result, toTask(doc))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("list", "", err)
	}

	c.logger.Debug("firestore list", "collection", c.where.Collection, "count", len(result))
	return result, nil
}

// Create inserts a new task document and returns the id Firestore assigned.
func (c *Client) Create(ctx context.Context, text, deadline string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	doc := &fsapi.Document{Fields: map[string]fsapi.Value{
		fieldText:      stringValue(text),
		fieldCompleted: boolValue(false),
		fieldDeadline:  stringValue(deadline),
	}}

	// No document id: Firestore generates one.
	created, err := c.svc.Projects.Databases.Documents.CreateDocument(c.where.Parent(), c.where.Collection, doc).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapError("create", "", err)
	}

	id := path.Base(created.Name)
	c.logger.Debug("firestore create", "id", id)
	return id, nil
}

// UpdateFields patches only the set fields of an existing document.
func (c *Client) UpdateFields(ctx context.Context, id string, fields service.Fields) error {
	name, err := c.documentName(id)
	if err != nil {
		return service.Wrap("update", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// An empty update mask would replace the whole document, so an empty
	// update only checks that the document exists.
	if fields.Empty() {
		if _, err := c.svc.Projects.Databases.Documents.Get(name).Context(ctx).Do(); err != nil {
			return wrapError("update", id, err)
		}
		return nil
	}

	doc := &fsapi.Document{Fields: make(map[string]fsapi.Value)}
	if fields.Text != nil {
		doc.Fields[fieldText] = stringValue(*fields.Text)
	}
	if fields.Completed != nil {
		doc.Fields[fieldCompleted] = boolValue(*fields.Completed)
	}
	if fields.Deadline != nil {
		doc.Fields[fieldDeadline] = stringValue(*fields.Deadline)
	}

	_, err = c.svc.Projects.Databases.Documents.Patch(name, doc).
		UpdateMaskFieldPaths(fields.Paths()...).
		CurrentDocumentExists(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrapError("update", id, err)
	}

	c.logger.Debug("firestore update", "id", id, "fields", strings.Join(fields.Paths(), ","))
	return nil
}

// Delete removes a task document. Missing documents are an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	name, err := c.documentName(id)
	if err != nil {
		return service.Wrap("delete", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err = c.svc.Projects.Databases.Documents.Delete(name).
		CurrentDocumentExists(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrapError("delete", id, err)
	}

	c.logger.Debug("firestore delete", "id", id)
	return nil
}

// documentName builds the full resource name of a task document.
// Ids containing a slash would address another collection and are rejected.
func (c *Client) documentName(id string) (string, error) {
	if id == "" || strings.Contains(id, "/") {
		return "", service.ErrNotFound
	}
	return c.where.Parent() + "/" + c.where.Collection + "/" + id, nil
}

func toTask(doc *fsapi.Document) service.Task {
	return service.Task{
		ID:        path.Base(doc.Name),
		Text:      doc.Fields[fieldText].StringValue,
		Completed: doc.Fields[fieldCompleted].BooleanValue,
		Deadline:  doc.Fields[fieldDeadline].StringValue,
	}
}

func stringValue(s string) fsapi.Value {
	return fsapi.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func boolValue(b bool) fsapi.Value {
	return fsapi.Value{BooleanValue: b, ForceSendFields: []string{"BooleanValue"}}
}

// wrapError classifies API errors and wraps them in a service.StoreError.
func wrapError(op, id string, err error) error {
	if err == nil {
		return nil
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return service.Wrap(op, id, fmt.Errorf("%w: %v", service.ErrTimeout, err))
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return service.Wrap(op, id, fmt.Errorf("%w: %s", service.ErrNotFound, gerr.Message))
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.Wrap(op, id, fmt.Errorf("%w: token expired, revoked or lacks access (run: countdo login): %s", service.ErrUnauthorized, gerr.Message))
		}
	}

	return service.Wrap(op, id, err)
}
