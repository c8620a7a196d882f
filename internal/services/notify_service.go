package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"meetmaster/config"
	"meetmaster/models"
	"meetmaster/monitoring"
	"meetmaster/utils"
)

// NotifyQueueKey is the Redis list the dispatch workers consume.
const NotifyQueueKey = "notify:jobs"

const brpopTimeout = 2 * time.Second

// NotifyService dispatches event notifications out-of-band. Callers only
// get the "job enqueued" contract; delivery happens on worker goroutines
// and may complete after the triggering request has returned.
type NotifyService struct {
	app    core.App
	redis  *redis.Client
	pubnub *pubnub.PubNub
	config *config.Config
	cb     *utils.CircuitBreaker

	// mail overrides the app mail client in tests
	mail mailer.Mailer
}

func NewNotifyService(app core.App, redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config) *NotifyService {
	return &NotifyService{
		app:    app,
		redis:  redisClient,
		pubnub: pn,
		config: cfg,
		cb:     utils.NewCircuitBreaker("mail"),
	}
}

// EnqueueFanout queues a notification for every user attending the event
// at dispatch time.
func (s *NotifyService) EnqueueFanout(ctx context.Context, eventID, subject, message string) error {
	return s.enqueue(ctx, models.NotifyJob{
		EventID: eventID,
		Subject: subject,
		Message: message,
	})
}

// EnqueueDirect queues a notification for a single user.
func (s *NotifyService) EnqueueDirect(ctx context.Context, eventID, userID, subject, message string) error {
	return s.enqueue(ctx, models.NotifyJob{
		EventID: eventID,
		UserID:  userID,
		Subject: subject,
		Message: message,
	})
}

func (s *NotifyService) enqueue(ctx context.Context, job models.NotifyJob) error {
	id, err := utils.GenerateCode(8)
	if err != nil {
		return err
	}
	job.ID = id
	job.EnqueuedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, NotifyQueueKey, string(data)).Err(); err != nil {
		return fmt.Errorf("enqueue notify job: %w", err)
	}
	return nil
}

// Worker consumes dispatch jobs until ctx is canceled. Dispatch runs on
// a detached context so an in-flight delivery is not cut off mid-send by
// shutdown; it is bounded by the configured notify timeout instead.
func (s *NotifyService) Worker(ctx context.Context) {
	for {
		res, err := s.redis.BRPop(ctx, brpopTimeout, NotifyQueueKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("notify: queue pop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		var job models.NotifyJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Printf("notify: dropping malformed job: %v", err)
			continue
		}

		dispatchCtx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		if err := s.Dispatch(dispatchCtx, job); err != nil {
			log.Printf("notify: dispatch %s for event %s: %v", job.ID, job.EventID, err)
			monitoring.TrackDispatch(job.Kind(), "error")
		} else {
			monitoring.TrackDispatch(job.Kind(), "ok")
		}
		cancel()
	}
}

// Dispatch resolves the recipient set at dispatch time, attempts every
// delivery, then writes exactly one notification log row regardless of
// recipient count or delivery outcome. Delivery errors are surfaced
// after the log write, never swallowed.
func (s *NotifyService) Dispatch(ctx context.Context, job models.NotifyJob) error {
	event, err := s.app.FindRecordById("events", job.EventID)
	if err != nil {
		return fmt.Errorf("load event %s: %w", job.EventID, err)
	}

	recipients, err := s.resolveRecipients(job, event)
	if err != nil {
		return err
	}

	sendErr := s.deliver(ctx, recipients, job.Subject, job.Message)
	logErr := s.logNotification(event, job.Message)
	return errors.Join(sendErr, logErr)
}

func (s *NotifyService) resolveRecipients(job models.NotifyJob, event *core.Record) ([]models.Recipient, error) {
	var users []*core.Record

	if job.UserID != "" {
		user, err := s.app.FindRecordById("users", job.UserID)
		if err != nil {
			return nil, fmt.Errorf("load user %s: %w", job.UserID, err)
		}
		users = append(users, user)
	} else if ids := event.GetStringSlice("attendees"); len(ids) > 0 {
		found, err := s.app.FindRecordsByIds("users", ids)
		if err != nil {
			return nil, fmt.Errorf("load attendees: %w", err)
		}
		users = found
	}

	recipients := make([]models.Recipient, 0, len(users))
	for _, user := range users {
		recipients = append(recipients, models.Recipient{
			UserID: user.Id,
			Email:  user.GetString("email"),
			Name:   user.GetString("username"),
		})
	}
	return recipients, nil
}

// deliver attempts every recipient independently: one failed send does
// not stop the rest. The first error is kept and returned once all
// recipients were attempted.
func (s *NotifyService) deliver(ctx context.Context, recipients []models.Recipient, subject, message string) error {
	from := s.sender()

	var firstErr error
	for _, recipient := range recipients {
		msg := &mailer.Message{
			From:    from,
			To:      []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
			Subject: subject,
			Text:    message,
		}

		err := s.cb.Execute(ctx, func() error {
			return s.mailClient().Send(msg)
		})
		if err != nil {
			log.Printf("notify: send to %s failed: %v", recipient.Email, err)
			monitoring.TrackEmail("error")
			if firstErr == nil {
				firstErr = fmt.Errorf("send to %s: %w", recipient.Email, err)
			}
			continue
		}
		monitoring.TrackEmail("ok")

		s.publish(recipient.UserID, map[string]any{
			"type":    "notification",
			"subject": subject,
			"message": message,
		})
	}
	return firstErr
}

// logNotification appends the single log row for this dispatch.
func (s *NotifyService) logNotification(event *core.Record, message string) error {
	collection, err := s.app.FindCollectionByNameOrId("notifications")
	if err != nil {
		return fmt.Errorf("notifications collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("event", event.Id)
	record.Set("message", message)

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (s *NotifyService) sender() mail.Address {
	if s.app != nil {
		if settings := s.app.Settings(); settings != nil && settings.Meta.SenderAddress != "" {
			return mail.Address{Name: settings.Meta.SenderName, Address: settings.Meta.SenderAddress}
		}
	}
	return mail.Address{Name: s.config.SenderName, Address: s.config.SenderAddress}
}

func (s *NotifyService) mailClient() mailer.Mailer {
	if s.mail != nil {
		return s.mail
	}
	return s.app.NewMailClient()
}

// publish pushes a best-effort realtime message to the user's channel.
func (s *NotifyService) publish(userID string, payload map[string]any) {
	if s.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("user-%s", userID)
	s.pubnub.Publish().
		Channel(channel).
		Message(payload).
		Execute()
}
