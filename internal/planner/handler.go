package planner

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/chronomate/chronomate/internal/api"
	"github.com/chronomate/chronomate/internal/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Routes mounts the planner endpoints. Callers apply auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Post("/{id}/complete", h.CompleteTask)
		r.Delete("/{id}", h.DeleteTask)
	})
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Delete("/{id}", h.DeleteEvent)
	})
	r.Route("/reminders", func(r chi.Router) {
		r.Get("/", h.ListReminders)
		r.Post("/", h.CreateReminder)
		r.Get("/due", h.DueReminders)
		r.Post("/{id}/snooze", h.SnoozeReminder)
		r.Post("/{id}/complete", h.CompleteReminder)
	})
	r.Route("/habits", func(r chi.Router) {
		r.Get("/", h.ListHabits)
		r.Post("/", h.CreateHabit)
		r.Post("/{id}/complete", h.CompleteHabit)
	})
	r.Get("/mood", h.GetMood)
	r.Put("/mood", h.UpdateMood)
	r.Get("/profile", h.GetProfile)
	r.Patch("/profile", h.UpdateProfile)
	r.Get("/insights", h.Insights)
}

func requestUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return false
	}
	return true
}

func serviceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		api.HandleError(w, api.ErrNotFound)
	case errors.Is(err, ErrInvalidInput):
		api.HandleError(w, api.NewValidationError(err.Error()))
	default:
		slog.Error(op, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}

func queryBool(r *http.Request, key string) (*bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Tasks

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	completed, err := queryBool(r, "completed")
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid completed filter"))
		return
	}
	q := TaskQuery{
		Completed: completed,
		Category:  r.URL.Query().Get("category"),
		DueToday:  r.URL.Query().Get("due") == "today",
	}

	tasks, err := h.svc.ListTasks(r.Context(), userID, q)
	if err != nil {
		serviceError(w, "listing tasks", err)
		return
	}
	api.JSON(w, http.StatusOK, tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.svc.CreateTask(r.Context(), userID, req)
	if err != nil {
		serviceError(w, "creating task", err)
		return
	}
	api.JSON(w, http.StatusCreated, task)
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.svc.CompleteTask(r.Context(), userID, id)
	if err != nil {
		serviceError(w, "completing task", err)
		return
	}
	api.JSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteTask(r.Context(), userID, id); err != nil {
		serviceError(w, "deleting task", err)
		return
	}
	api.JSONMessage(w, http.StatusOK, "task deleted")
}

func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	ins, err := h.svc.Insights(r.Context(), userID)
	if err != nil {
		serviceError(w, "computing insights", err)
		return
	}
	api.JSON(w, http.StatusOK, ins)
}

// Events

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	from, err := queryTime(r, "from")
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("from must be RFC 3339"))
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("to must be RFC 3339"))
		return
	}

	events, err := h.svc.ListEvents(r.Context(), userID, EventFilter{
		From:     from,
		To:       to,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		serviceError(w, "listing events", err)
		return
	}
	api.JSON(w, http.StatusOK, events)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), userID, req)
	if err != nil {
		serviceError(w, "creating event", err)
		return
	}
	api.JSON(w, http.StatusCreated, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), userID, id); err != nil {
		serviceError(w, "deleting event", err)
		return
	}
	api.JSONMessage(w, http.StatusOK, "event deleted")
}

// Reminders

func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	completed, err := queryBool(r, "completed")
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid completed filter"))
		return
	}

	reminders, err := h.svc.ListReminders(r.Context(), userID, completed)
	if err != nil {
		serviceError(w, "listing reminders", err)
		return
	}
	api.JSON(w, http.StatusOK, reminders)
}

func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req CreateReminderRequest
	if !h.decode(w, r, &req) {
		return
	}

	reminder, err := h.svc.CreateReminder(r.Context(), userID, req)
	if err != nil {
		serviceError(w, "creating reminder", err)
		return
	}
	api.JSON(w, http.StatusCreated, reminder)
}

func (h *Handler) DueReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	reminders, err := h.svc.DueReminders(r.Context(), userID)
	if err != nil {
		serviceError(w, "listing due reminders", err)
		return
	}
	api.JSON(w, http.StatusOK, reminders)
}

func (h *Handler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SnoozeRequest
	if !h.decode(w, r, &req) {
		return
	}

	reminder, err := h.svc.SnoozeReminder(r.Context(), userID, id, req.Minutes)
	if err != nil {
		serviceError(w, "snoozing reminder", err)
		return
	}
	api.JSON(w, http.StatusOK, reminder)
}

func (h *Handler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reminder, err := h.svc.CompleteReminder(r.Context(), userID, id)
	if err != nil {
		serviceError(w, "completing reminder", err)
		return
	}
	api.JSON(w, http.StatusOK, reminder)
}

// Habits

func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	habits, err := h.svc.ListHabits(r.Context(), userID)
	if err != nil {
		serviceError(w, "listing habits", err)
		return
	}
	api.JSON(w, http.StatusOK, habits)
}

func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req CreateHabitRequest
	if !h.decode(w, r, &req) {
		return
	}

	habit, err := h.svc.CreateHabit(r.Context(), userID, req)
	if err != nil {
		serviceError(w, "creating habit", err)
		return
	}
	api.JSON(w, http.StatusCreated, habit)
}

func (h *Handler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	habit, err := h.svc.CompleteHabit(r.Context(), userID, id)
	if err != nil {
		serviceError(w, "completing habit", err)
		return
	}
	api.JSON(w, http.StatusOK, habit)
}

// Mood and profile

func (h *Handler) GetMood(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	state, err := h.svc.Mood(r.Context(), userID)
	if err != nil {
		serviceError(w, "loading mood", err)
		return
	}
	api.JSON(w, http.StatusOK, state)
}

func (h *Handler) UpdateMood(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req UpdateMoodRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.svc.UpdateMood(r.Context(), userID, req.Mood, req.Notes)
	if err != nil {
		serviceError(w, "updating mood", err)
		return
	}
	api.JSON(w, http.StatusOK, entry)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		serviceError(w, "loading profile", err)
		return
	}
	api.JSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		serviceError(w, "updating profile", err)
		return
	}
	api.JSON(w, http.StatusOK, p)
}
