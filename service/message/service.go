package message

import (
	"context"
	"errors"
	"log/slog"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/messaging"
	"github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/scheduler"
)

// Outcome reports the effect of Send, Receive or Reply.
type Outcome struct {
	Message *model.Message `json:"message,omitempty"`
	// Delivered is the target that received the message directly.
	Delivered *model.Process `json:"delivered,omitempty"`
	// Blocked is the caller when it had to wait.
	Blocked *model.Process `json:"blocked,omitempty"`
}

const (
	opSend    = "send"
	opReceive = "receive"
	opReply   = "reply"
)

// Service exchanges messages through the scheduler.
type Service struct {
	scheduler *scheduler.Service
	mailbox   *memory.Queue[model.Message]
	policy    *policy.Policy
	maxLength int
	events    *event.Publisher[event.Transition]
	logger    *slog.Logger
}

// Send queues text for target, hands it over at once if the target is
// waiting as the policy requires, and blocks the sender until a reply. A
// policy carried by ctx overrides the configured one.
func (s *Service) Send(ctx context.Context, target int, text string) (*Outcome, error) {
	sender, err := s.validate(target, text)
	if err != nil {
		return nil, err
	}
	msg := s.newMessage(model.MessageKindSend, sender.PID, target, text)
	if err = s.mailbox.Publish(ctx, msg); err != nil {
		if errors.Is(err, messaging.ErrQueueFull) {
			return nil, model.ErrMailboxFull
		}
		return nil, err
	}
	outcome := &Outcome{Message: msg}
	if process, ok := s.scheduler.Blocked(target); ok && s.policyFor(ctx).CanDeliver(process.State) {
		delivered, err := s.scheduler.Deliver(ctx, target, msg)
		s.unqueue(msg.ID)
		if err != nil {
			return nil, err
		}
		outcome.Delivered = delivered.Clone()
		s.delivered(ctx, msg, opSend)
	}
	blocked, err := s.scheduler.Block(ctx, model.StateBlockedSend, model.NoPID)
	if err != nil {
		return nil, err
	}
	outcome.Blocked = blocked.Clone()
	progress.UpdateCtx(ctx, progress.Delta{Sent: 1})
	s.publish(ctx, sender.PID, event.TypeSent, opSend, msg)
	return outcome, nil
}

// Receive consumes the running process's pending message. With nothing
// pending the process blocks until a message is delivered; in rendezvous
// mode a message already waiting in the mailbox is taken first.
func (s *Service) Receive(ctx context.Context) (*Outcome, error) {
	receiver, ok := s.scheduler.Running()
	if !ok {
		return nil, model.ErrNoRunningProcess
	}
	if msg := receiver.TakeMessage(); msg != nil {
		return &Outcome{Message: msg}, nil
	}
	if s.policyFor(ctx).IsRendezvous() {
		if queued, ok := s.mailbox.Take(matchTarget(receiver.PID)); ok {
			_ = queued.Ack()
			msg := *queued.T()
			s.delivered(ctx, &msg, opReceive)
			return &Outcome{Message: &msg}, nil
		}
	}
	blocked, err := s.scheduler.Block(ctx, model.StateBlockedReceive, model.NoPID)
	if err != nil {
		return nil, err
	}
	return &Outcome{Blocked: blocked.Clone()}, nil
}

// Reply answers a process waiting on Send. The replier keeps running.
func (s *Service) Reply(ctx context.Context, target int, text string) (*Outcome, error) {
	replier, err := s.validate(target, text)
	if err != nil {
		return nil, err
	}
	process, ok := s.scheduler.Blocked(target)
	if !ok || process.State != model.StateBlockedSend {
		return nil, model.ErrNotBlockedOnSend
	}
	msg := s.newMessage(model.MessageKindReply, replier.PID, target, text)
	delivered, err := s.scheduler.Deliver(ctx, target, msg)
	if err != nil {
		return nil, err
	}
	progress.UpdateCtx(ctx, progress.Delta{Replied: 1})
	s.publish(ctx, replier.PID, event.TypeSent, opReply, msg)
	s.delivered(ctx, msg, opReply)
	return &Outcome{Message: msg, Delivered: delivered.Clone()}, nil
}

// Pending returns the undelivered messages, oldest first.
func (s *Service) Pending() []model.Message {
	return s.mailbox.Pending()
}

func (s *Service) policyFor(ctx context.Context) *policy.Policy {
	if p := policy.FromContext(ctx); p != nil {
		return p
	}
	return s.policy
}

// unqueue removes a message handed over directly, or withdrawn after a
// failed delivery, from the mailbox.
func (s *Service) unqueue(id string) {
	if queued, ok := s.mailbox.Take(matchID(id)); ok {
		_ = queued.Ack()
	}
}

func (s *Service) delivered(ctx context.Context, msg *model.Message, op string) {
	progress.UpdateCtx(ctx, progress.Delta{Delivered: 1})
	s.publish(ctx, msg.Target, event.TypeDelivered, op, msg)
	s.logger.Debug("message delivered", "sender", msg.Sender, "target", msg.Target, "kind", msg.Kind)
}

func (s *Service) publish(ctx context.Context, pid int, eventType, op string, msg *model.Message) {
	if s.events == nil {
		return
	}
	evt := event.NewEvent(&event.Context{PID: pid, EventType: eventType, Operation: op}, event.Transition{})
	evt.Metadata["messageId"] = msg.ID
	evt.Metadata["kind"] = string(msg.Kind)
	evt.Metadata["sender"] = msg.Sender
	evt.Metadata["target"] = msg.Target
	evt.Metadata["text"] = msg.Text
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event", "pid", pid, "type", eventType, "error", err)
	}
}

func (s *Service) validate(target int, text string) (*model.Process, error) {
	if !s.scheduler.IsValidPID(target) {
		return nil, model.ErrInvalidPID
	}
	if err := model.ValidateText(text, s.maxLength); err != nil {
		return nil, err
	}
	running, ok := s.scheduler.Running()
	if !ok {
		return nil, model.ErrNoRunningProcess
	}
	return running, nil
}

func (s *Service) newMessage(kind model.MessageKind, sender, target int, text string) *model.Message {
	return &model.Message{
		ID:     idgen.New(),
		Kind:   kind,
		Sender: sender,
		Target: target,
		Text:   text,
		SentAt: clock.Now(),
	}
}

func matchID(id string) func(*model.Message) bool {
	return func(msg *model.Message) bool { return msg.ID == id }
}

func matchTarget(pid int) func(*model.Message) bool {
	return func(msg *model.Message) bool { return msg.Target == pid }
}
