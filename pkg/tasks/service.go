package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/taskclient/pkg/apiclient"
)

// ListOptions selects a page of tasks.
type ListOptions struct {
	Filter Filter
	Page   int // zero-based
}

// Query builds the listing query string.
func (o ListOptions) Query() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(o.Page*PageSize))
	q.Set("limit", strconv.Itoa(PageSize))
	if o.Filter != "" && o.Filter != FilterAll {
		q.Set("status", string(o.Filter))
	}
	return q
}

// HasNextPage reports whether a page holding n tasks may be followed by another.
func HasNextPage(n int) bool {
	return n >= PageSize
}

// Service talks to the task endpoints. Errors from the gateway are returned
// unwrapped so callers can classify them.
type Service struct {
	client *apiclient.Client
}

// NewService creates a task service over the gateway client.
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// List returns one page of tasks.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Task, error) {
	if opts.Page < 0 {
		return nil, ErrInvalidPage
	}
	if opts.Filter != "" && !opts.Filter.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, opts.Filter)
	}

	list, err := apiclient.Get[[]Task](ctx, s.client, "/tasks/?"+opts.Query().Encode())
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

// Create creates a task. An empty due date is sent as null.
func (s *Service) Create(ctx context.Context, task NewTask) (Task, error) {
	return apiclient.Post[Task](ctx, s.client, "/tasks/", task)
}

type completeRequest struct {
	Status       Status `json:"status"`
	ManagerEmail string `json:"manager_email,omitempty"`
}

// Complete marks a task completed. A non-empty managerEmail asks the backend
// to notify that address.
func (s *Service) Complete(ctx context.Context, id int64, managerEmail string) (Task, error) {
	if id <= 0 {
		return Task{}, ErrInvalidTaskID
	}
	return apiclient.Put[Task](ctx, s.client, taskPath(id), completeRequest{
		Status:       StatusCompleted,
		ManagerEmail: managerEmail,
	})
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}
	return apiclient.Delete(ctx, s.client, taskPath(id))
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}
