package apitest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/taskclient/pkg/tasks"
)

// newWindow is how recent a pending task must be to show under the "new" filter.
const newWindow = 24 * time.Hour

type taskRecord struct {
	owner string
	task  tasks.Task
}

// Notification records a completion e-mail the backend would have sent.
type Notification struct {
	TaskID int64
	Email  string
}

// SeedTask stores a task for the given user and returns it with its id.
func (s *Server) SeedTask(email string, t tasks.Task) tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTask++
	t.ID = s.nextTask
	if t.Status == "" {
		t.Status = tasks.StatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = tasks.Timestamp{Time: s.clock.Now().UTC()}
	}
	s.tasks[t.ID] = &taskRecord{owner: strings.ToLower(email), task: t}
	return t
}

// Tasks returns every stored task of a user, ordered by id.
func (s *Server) Tasks(email string) []tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownedLocked(strings.ToLower(email))
}

// Notifications returns the completion e-mails requested so far.
func (s *Server) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notified)
}

func (s *Server) ownedLocked(owner string) []tasks.Task {
	out := []tasks.Task{}
	for _, rec := range s.tasks {
		if rec.owner == owner {
			out = append(out, rec.task)
		}
	}
	slices.SortFunc(out, func(a, b tasks.Task) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (s *Server) matches(f tasks.Filter, t tasks.Task, now time.Time) bool {
	switch f {
	case tasks.FilterPending:
		return t.Status == tasks.StatusPending
	case tasks.FilterCompleted:
		return t.Status == tasks.StatusCompleted
	case tasks.FilterOverdue:
		return t.IsOverdue(now)
	case tasks.FilterNew:
		return t.Status == tasks.StatusPending && now.Sub(t.CreatedAt.Time) < newWindow
	default:
		return true
	}
}

func queryInt(r *http.Request, name string, def int) (int, *Violation) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &Violation{
			Loc:  []any{"query", name},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		}
	}
	return n, nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	skip, v := queryInt(r, "skip", 0)
	if v != nil {
		writeViolations(w, *v)
		return
	}
	limit, v := queryInt(r, "limit", 100)
	if v != nil {
		writeViolations(w, *v)
		return
	}

	filter := tasks.FilterAll
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter = tasks.Filter(raw)
		if !filter.Valid() || filter == tasks.FilterAll {
			writeViolations(w, Violation{
				Loc:  []any{"query", "status"},
				Msg:  "value is not a valid enumeration member; permitted: 'new', 'pending', 'overdue', 'completed'",
				Type: "type_error.enum",
			})
			return
		}
	}

	owner := userFromContext(r.Context()).Email
	now := s.clock.Now()

	s.mu.Lock()
	all := s.ownedLocked(owner)
	s.mu.Unlock()

	selected := []tasks.Task{}
	for _, t := range all {
		if s.matches(filter, t, now) {
			selected = append(selected, t)
		}
	}

	if skip >= len(selected) {
		writeJSON(w, http.StatusOK, []tasks.Task{})
		return
	}
	end := min(skip+limit, len(selected))
	writeJSON(w, http.StatusOK, selected[skip:end])
}

type createTaskRequest struct {
	Title       *string `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeViolations(w, Violation{Loc: []any{"body"}, Msg: "value is not a valid dict", Type: "type_error.dict"})
		return
	}

	var violations []Violation
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		violations = append(violations, missingField("body", "title"))
	}
	var due tasks.Timestamp
	if req.DueDate != nil {
		parsed, err := tasks.ParseTimestamp(*req.DueDate)
		if err != nil {
			violations = append(violations, Violation{
				Loc:  []any{"body", "due_date"},
				Msg:  "invalid datetime format",
				Type: "value_error.datetime",
			})
		}
		due = parsed
	}
	if len(violations) > 0 {
		writeViolations(w, violations...)
		return
	}

	created := s.SeedTask(userFromContext(r.Context()).Email, tasks.Task{
		Title:       strings.TrimSpace(*req.Title),
		Description: req.Description,
		Status:      tasks.StatusPending,
		DueDate:     due,
	})
	writeJSON(w, http.StatusOK, created)
}

// lookup resolves the {id} parameter to a task of the current user.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*taskRecord, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeViolations(w, Violation{
			Loc:  []any{"path", "id"},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		})
		return nil, false
	}

	owner := userFromContext(r.Context()).Email
	rec, ok := s.tasks[id]
	if !ok || rec.owner != owner {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec.task)
}

type updateTaskRequest struct {
	Title        *string       `json:"title"`
	Description  *string       `json:"description"`
	Status       *tasks.Status `json:"status"`
	ManagerEmail string        `json:"manager_email"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeViolations(w, Violation{Loc: []any{"body"}, Msg: "value is not a valid dict", Type: "type_error.dict"})
		return
	}
	if req.Status != nil && *req.Status != tasks.StatusPending && *req.Status != tasks.StatusCompleted {
		writeViolations(w, Violation{
			Loc:  []any{"body", "status"},
			Msg:  "value is not a valid enumeration member; permitted: 'pending', 'completed'",
			Type: "type_error.enum",
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if req.Title != nil {
		rec.task.Title = *req.Title
	}
	if req.Description != nil {
		rec.task.Description = *req.Description
	}
	if req.Status != nil {
		rec.task.Status = *req.Status
	}
	if req.ManagerEmail != "" {
		rec.task.ManagerEmail = req.ManagerEmail
		if rec.task.Status == tasks.StatusCompleted {
			s.notified = append(s.notified, Notification{TaskID: rec.task.ID, Email: req.ManagerEmail})
		}
	}
	writeJSON(w, http.StatusOK, rec.task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	delete(s.tasks, rec.task.ID)
	w.WriteHeader(http.StatusNoContent)
}
