package notify

import (
	"context"

	"gorm.io/datatypes"

	"merry/internal/domain/cycle"
	"merry/internal/domain/event"
	"merry/internal/domain/notification"
	"merry/pkg/id"
)

// Message is one notification's content.
type Message struct {
	Type  string
	Title string
	Body  string
	Data  map[string]any
}

// Sink writes in-app notifications.
type Sink struct {
	notes  notification.Repository
	cycles cycle.Repository
}

func NewSink(notes notification.Repository, cycles cycle.Repository) *Sink {
	return &Sink{notes: notes, cycles: cycles}
}

func (s *Sink) CreateNotification(ctx context.Context, userID, chamaID string, m Message) error {
	return s.notes.CreateBatch(ctx, []notification.Notification{build(userID, chamaID, m)})
}

// CreateCycleNotifications sends m to every member of the cycle and returns
// how many notifications were written.
func (s *Sink) CreateCycleNotifications(ctx context.Context, cycleID, chamaID string, m Message) (int, error) {
	ms, err := s.cycles.ListMembers(ctx, cycleID)
	if err != nil {
		return 0, err
	}
	users := make([]string, 0, len(ms))
	for _, cm := range ms {
		if cm.Status == cycle.MemberRemoved {
			continue
		}
		users = append(users, cm.UserID)
	}
	return len(users), s.createFor(ctx, users, chamaID, m)
}

func (s *Sink) createFor(ctx context.Context, userIDs []string, chamaID string, m Message) error {
	if len(userIDs) == 0 {
		return nil
	}
	ns := make([]notification.Notification, len(userIDs))
	for i, uid := range userIDs {
		ns[i] = build(uid, chamaID, m)
	}
	return s.notes.CreateBatch(ctx, ns)
}

func build(userID, chamaID string, m Message) notification.Notification {
	var data datatypes.JSONMap
	if len(m.Data) > 0 {
		data = datatypes.JSONMap(m.Data)
	}
	return notification.Notification{
		ID:      id.NewID32(),
		UserID:  userID,
		ChamaID: chamaID,
		Type:    m.Type,
		Title:   m.Title,
		Message: m.Body,
		Data:    data,
	}
}

// Notifications turns events into in-app notifications. Events without
// direct recipients go to the whole cycle.
func Notifications(s *Sink) event.Handler {
	return event.HandlerFunc(func(ctx context.Context, e event.Event) error {
		m, ok := render(e)
		if !ok {
			return nil
		}
		if e.Type == event.ContributionsDue && len(e.Dues) > 0 {
			for _, d := range e.Dues {
				per := m
				per.Data = withDue(m.Data, d)
				if err := s.CreateNotification(ctx, d.UserID, e.ChamaID, per); err != nil {
					return err
				}
			}
			return nil
		}
		if len(e.UserIDs) == 0 && e.CycleID != "" {
			_, err := s.CreateCycleNotifications(ctx, e.CycleID, e.ChamaID, m)
			return err
		}
		return s.createFor(ctx, e.UserIDs, e.ChamaID, m)
	})
}

func withDue(base map[string]any, d event.Due) map[string]any {
	out := make(map[string]any, len(base)+2)
	for k, v := range base {
		out[k] = v
	}
	out["contribution_id"] = d.ContributionID
	out["due_date"] = d.DueDate.Format("2006-01-02")
	return out
}
