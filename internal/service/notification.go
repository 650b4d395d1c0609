package service

import (
	"context"
	"sync"
	"time"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/client"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	sendTimeout       = 10 * time.Second
	notificationLimit = 50
)

// Message is one outbound notification. RecipientID gets an in-app copy,
// Email gets a mail; either may be empty.
type Message struct {
	RecipientID   string
	RecipientKind model.IdentityKind
	Email         string
	Kind          model.TemplateKind
	Subject       string
	Body          string
	Link          string
}

// Notifier accepts messages without blocking the caller.
type Notifier interface {
	Notify(msg Message)
}

type NotificationService interface {
	Notifier
	Start()
	Stop(ctx context.Context) error
	ListMine(ctx context.Context, identity *model.Identity) ([]*model.Notification, error)
	MarkRead(ctx context.Context, identity *model.Identity, notificationID string) error
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepository
	mailClient       client.MailClient
	logger           *log.Logger
	workers          int

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	mailClient client.MailClient,
	logger *log.Logger,
	workers int,
	queueSize int,
) NotificationService {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		mailClient:       mailClient,
		logger:           logger,
		workers:          workers,
		queue:            make(chan Message, queueSize),
	}
}

func (s *notificationServiceImpl) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work()
	}
}

// Stop closes the queue and waits for the workers to drain it, or for ctx.
func (s *notificationServiceImpl) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify drops the message when the queue is full or stopped.
func (s *notificationServiceImpl) Notify(msg Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.logger.Warnj(log.JSON{"msg": "notification dropped after shutdown", "kind": msg.Kind})
		return
	}

	select {
	case s.queue <- msg:
	default:
		s.logger.Warnj(log.JSON{"msg": "notification queue full, dropping", "kind": msg.Kind, "recipient": msg.RecipientID})
	}
}

func (s *notificationServiceImpl) work() {
	defer s.wg.Done()
	for msg := range s.queue {
		s.deliver(msg)
	}
}

func (s *notificationServiceImpl) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if msg.RecipientID != "" {
		err := s.notificationRepo.Create(ctx, &model.Notification{
			ID:            uuid.NewString(),
			RecipientID:   msg.RecipientID,
			RecipientKind: msg.RecipientKind,
			Kind:          msg.Kind,
			Message:       msg.Body,
			Link:          msg.Link,
		})
		if err != nil {
			s.logger.Errorj(log.JSON{"msg": "store notification", "kind": msg.Kind, "recipient": msg.RecipientID, "error": err.Error()})
		}
	}

	if msg.Email != "" {
		if err := s.mailClient.Send(ctx, msg.Email, msg.Subject, msg.Body); err != nil {
			s.logger.Errorj(log.JSON{"msg": "send email", "kind": msg.Kind, "to": msg.Email, "error": err.Error()})
		}
	}
}

func (s *notificationServiceImpl) ListMine(ctx context.Context, identity *model.Identity) ([]*model.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, identity.ID, notificationLimit)
	if err != nil {
		return nil, storeErr(err, "list notifications", "notification")
	}
	return notifications, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, identity *model.Identity, notificationID string) error {
	ok, err := s.notificationRepo.MarkRead(ctx, identity.ID, notificationID)
	if err != nil {
		return storeErr(err, "mark notification read", "notification")
	}
	if !ok {
		return apperr.NotFound("notification")
	}
	return nil
}
