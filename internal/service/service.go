// Package service implements the recruitment lifecycle: publication, join,
// adjustable join, leave and cancel. Every transition runs inside the
// store's per-instance transaction; the panel is re-rendered from the
// committed record and notifications go out after commit, through Deliver.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/panel"
	"github.com/Shivanand-hulikatti/lucybot/internal/repository"
)

// Store persists recruitment instances. Update must serialize concurrent
// calls for the same id.
type Store interface {
	Create(ctx context.Context, in *model.Instance) error
	Get(ctx context.Context, id string) (*model.Instance, error)
	List(ctx context.Context, status model.Status) ([]*model.Instance, error)
	Update(ctx context.Context, id string, fn repository.MutateFunc) (*model.Instance, error)
	Delete(ctx context.Context, id string) error
}

// PanelRef locates a published panel.
type PanelRef struct {
	ThreadID  string
	MessageID string
	URL       string
}

// Transport is the chat-platform side of the lifecycle.
type Transport interface {
	// PublishPanel posts the panel for a new recruitment.
	PublishPanel(ctx context.Context, in *model.Instance, doc panel.Document) (PanelRef, error)
	// Announce tells the community that a recruitment was published.
	Announce(ctx context.Context, in *model.Instance) error
	// Notify sends a standalone message to a channel or thread.
	Notify(ctx context.Context, channelID, text string) error
	// LockThread locks and archives a discussion thread.
	LockThread(ctx context.Context, threadID string) error
}

// Presenter shows a rendered document to the actor, typically by editing the
// message whose button was pressed.
type Presenter func(doc panel.Document) error

// Outcome is the committed instance together with its rendered panel.
type Outcome struct {
	Instance *model.Instance
	Document panel.Document
	// Filled is set on the transition that completed the party. The
	// party-full notice goes out when the outcome is handed to Deliver.
	Filled bool
}

// RecruitmentService orchestrates recruitment lifecycle operations.
type RecruitmentService struct {
	store     Store
	transport Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecruitmentService constructs a RecruitmentService with its dependencies.
func NewRecruitmentService(store Store, transport Transport, logger *zap.Logger) *RecruitmentService {
	return &RecruitmentService{
		store:     store,
		transport: transport,
		logger:    logger.Named("recruitment"),
		now:       time.Now,
	}
}

// Publish creates a recruitment, seats the organizer according to
// organizerRole and posts its panel.
func (s *RecruitmentService) Publish(ctx context.Context, d model.Descriptor, organizerRole string) (Outcome, error) {
	d.Content = strings.TrimSpace(d.Content)
	d.Time = strings.TrimSpace(d.Time)
	d.Comment = strings.TrimSpace(d.Comment)

	in, err := model.NewInstance(uuid.NewString(), d, organizerRole, s.now())
	if err != nil {
		return Outcome{}, err
	}
	if err := s.store.Create(ctx, in); err != nil {
		return Outcome{}, fmt.Errorf("create recruitment: %w", err)
	}

	ref, err := s.transport.PublishPanel(ctx, in, panel.Render(in))
	if err != nil {
		if delErr := s.store.Delete(ctx, in.ID); delErr != nil {
			s.logger.Error("drop unpublished recruitment", zap.String("id", in.ID), zap.Error(delErr))
		}
		return Outcome{}, fmt.Errorf("publish panel: %w", err)
	}

	id := in.ID
	in, err = s.store.Update(ctx, id, func(in *model.Instance) error {
		in.ThreadID, in.MessageID, in.JumpURL = ref.ThreadID, ref.MessageID, ref.URL
		return nil
	})
	if err != nil {
		s.retract(ctx, id, ref)
		return Outcome{}, fmt.Errorf("record panel location: %w", err)
	}

	s.logger.Info("recruitment published",
		zap.String("id", in.ID),
		zap.String("type", string(in.Descriptor.Type)),
		zap.String("content", in.Descriptor.Content),
		zap.String("organizer", in.Descriptor.OrganizerID),
		zap.String("thread", in.ThreadID),
	)
	if err := s.transport.Announce(ctx, in); err != nil {
		s.logger.Warn("announce recruitment", zap.String("id", in.ID), zap.Error(err))
	}
	return Outcome{Instance: in, Document: panel.Render(in)}, nil
}

// Join seats actor in role. A member already in the party is moved without
// a capacity check; a new member is rejected with model.ErrFull when no
// place remains.
func (s *RecruitmentService) Join(ctx context.Context, id string, actor model.Member, role string) (Outcome, error) {
	var filled bool
	in, err := s.store.Update(ctx, id, func(in *model.Instance) error {
		if err := in.OccupySeat(role, actor); err != nil {
			return err
		}
		filled = in.CheckAndNotify()
		return nil
	})
	if err != nil {
		return Outcome{}, s.reject("join", id, actor.ID, err)
	}
	s.logger.Debug("joined", zap.String("id", id), zap.String("member", actor.ID), zap.String("role", role))
	return Outcome{Instance: in, Document: panel.Render(in), Filled: filled}, nil
}

// CanJoinAdjustable runs the capacity check for an adjustable join before
// the note is collected. It changes nothing.
func (s *RecruitmentService) CanJoinAdjustable(ctx context.Context, id, actorID string) error {
	in, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if in.Cancelled() {
		return model.ErrCancelled
	}
	if !in.Holds(actorID) && in.IsFull() {
		return model.ErrFull
	}
	return nil
}

// JoinAdjustable puts actor on the adjustable roster with note.
func (s *RecruitmentService) JoinAdjustable(ctx context.Context, id string, actor model.Member, note string) (Outcome, error) {
	var filled bool
	in, err := s.store.Update(ctx, id, func(in *model.Instance) error {
		if err := in.AddAdjustable(actor, note); err != nil {
			return err
		}
		filled = in.CheckAndNotify()
		return nil
	})
	if err != nil {
		return Outcome{}, s.reject("join adjustable", id, actor.ID, err)
	}
	s.logger.Debug("joined adjustable", zap.String("id", id), zap.String("member", actor.ID))
	return Outcome{Instance: in, Document: panel.Render(in), Filled: filled}, nil
}

// Leave removes actor from the party, re-arming the party-full notice when
// occupancy drops below capacity.
func (s *RecruitmentService) Leave(ctx context.Context, id, actorID string) (Outcome, error) {
	in, err := s.store.Update(ctx, id, func(in *model.Instance) error {
		return in.Leave(actorID)
	})
	if err != nil {
		return Outcome{}, s.reject("leave", id, actorID, err)
	}
	s.logger.Debug("left", zap.String("id", id), zap.String("member", actorID))
	return Outcome{Instance: in, Document: panel.Render(in)}, nil
}

// Cancel closes the recruitment. Only the organizer may cancel. After
// commit the terminal document is handed to present, and only then is the
// thread locked so the actor's interaction can still be answered.
func (s *RecruitmentService) Cancel(ctx context.Context, id, actorID string, present Presenter) (Outcome, error) {
	in, err := s.store.Update(ctx, id, func(in *model.Instance) error {
		return in.Cancel(actorID)
	})
	if err != nil {
		return Outcome{}, s.reject("cancel", id, actorID, err)
	}
	doc := panel.RenderCancelled(in)
	s.logger.Info("recruitment cancelled", zap.String("id", id), zap.String("organizer", actorID))

	if present != nil {
		if err := present(doc); err != nil {
			s.logger.Warn("present cancelled panel", zap.String("id", id), zap.Error(err))
		}
	}
	if in.ThreadID != "" {
		if err := s.transport.LockThread(ctx, in.ThreadID); err != nil {
			s.logger.Warn("lock recruitment thread", zap.String("id", id), zap.String("thread", in.ThreadID), zap.Error(err))
		}
	}
	return Outcome{Instance: in, Document: doc}, nil
}

// Get returns a single recruitment.
func (s *RecruitmentService) Get(ctx context.Context, id string) (*model.Instance, error) {
	if id == "" {
		return nil, fmt.Errorf("recruitment id is required")
	}
	in, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get recruitment: %w", err)
	}
	return in, nil
}

// List returns recruitments, newest first. An empty status lists all.
func (s *RecruitmentService) List(ctx context.Context, status model.Status) ([]*model.Instance, error) {
	switch status {
	case "", model.StatusOpen, model.StatusCancelled:
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.store.List(ctx, status)
}

// FullNotice is the party-full message sent to the recruitment thread.
func FullNotice(in *model.Instance) string {
	return fmt.Sprintf("<@%s> 🎉 **%s** のメンバーが揃ったよ！ (%d/%d)",
		in.Descriptor.OrganizerID, in.Descriptor.Content, in.Occupancy(), in.MaxCapacity())
}

// Deliver sends the notifications a transition deferred. Callers answer
// the actor first so a slow notice never delays the panel update.
func (s *RecruitmentService) Deliver(ctx context.Context, out Outcome) {
	if out.Filled && out.Instance != nil {
		s.notifyFull(ctx, out.Instance)
	}
}

// retract takes down a panel whose location could not be recorded. The
// thread is locked so nobody joins a recruitment the store does not track.
func (s *RecruitmentService) retract(ctx context.Context, id string, ref PanelRef) {
	if ref.ThreadID != "" {
		if err := s.transport.LockThread(ctx, ref.ThreadID); err != nil {
			s.logger.Error("lock orphaned panel thread", zap.String("id", id), zap.String("thread", ref.ThreadID), zap.Error(err))
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("drop untracked recruitment", zap.String("id", id), zap.Error(err))
	}
}

func (s *RecruitmentService) notifyFull(ctx context.Context, in *model.Instance) {
	target := in.ThreadID
	if target == "" {
		s.logger.Warn("party full but no thread to notify", zap.String("id", in.ID))
		return
	}
	if err := s.transport.Notify(ctx, target, FullNotice(in)); err != nil {
		s.logger.Warn("send party-full notice", zap.String("id", in.ID), zap.Error(err))
		return
	}
	s.logger.Info("party full", zap.String("id", in.ID))
}

// reject logs a failed transition. Validation rejections are expected and
// logged at debug; anything else is a collaborator failure.
func (s *RecruitmentService) reject(op, id, actorID string, err error) error {
	if IsRejection(err) {
		s.logger.Debug(op+" rejected", zap.String("id", id), zap.String("member", actorID), zap.Error(err))
		return err
	}
	s.logger.Error(op+" failed", zap.String("id", id), zap.String("member", actorID), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

// IsRejection reports whether err is a validation rejection the actor
// should see, as opposed to an infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		model.ErrFull, model.ErrUnknownRole, model.ErrRoleTaken, model.ErrNotJoined,
		model.ErrNotOrganizer, model.ErrCancelled, model.ErrNoteRequired, model.ErrInvalidType,
		repository.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
