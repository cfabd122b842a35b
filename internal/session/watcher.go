package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/internal/flow"
	"github.com/bulwark-sec/bulwark/pkg/shared"
)

// Keys of the persisted values.
const (
	KeyToken      = "github_token"
	KeyUser       = "github_user"
	KeyResumeFlow = "open_github_flow"
)

// Session is an authenticated GitHub identity.
type Session struct {
	Token string
	User  shared.GitHubUser
}

// Validate checks that both the token and the user are well formed.
func (s Session) Validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("session token is empty")
	}
	return s.User.Validate()
}

// Resumer is the part of the GitHub flow the watcher drives.
type Resumer interface {
	HandleAuthSuccess(token string)
	SetStep(step flow.GitHubStep) error
}

// Watcher owns the persisted session. It and logout are the only writers of the session keys.
type Watcher struct {
	durable   Store
	ephemeral Store
	logger    hclog.Logger

	once    sync.Once
	watched *Session
	err     error
}

// NewWatcher creates a watcher. durable holds the session, ephemeral holds the resume flag.
func NewWatcher(durable, ephemeral Store, logger hclog.Logger) *Watcher {
	return &Watcher{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger.Named("session"),
	}
}

// LoadSession returns the stored session. Missing, partial or malformed data is cleared
// and reported as no session.
func (w *Watcher) LoadSession(ctx context.Context) (*Session, error) {
	token, hasToken, err := w.durable.Get(ctx, KeyToken)
	if err != nil {
		return nil, err
	}
	rawUser, hasUser, err := w.durable.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if !hasToken && !hasUser {
		return nil, nil
	}

	s, reason := decodeSession(token, hasToken, rawUser, hasUser)
	if reason != "" {
		w.logger.Warn("discarding stored session", "reason", reason)
		if err := w.ClearSession(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s, nil
}

func decodeSession(token string, hasToken bool, rawUser string, hasUser bool) (*Session, string) {
	if !hasToken || !hasUser {
		return nil, "partial session"
	}
	var user shared.GitHubUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, "malformed user: " + err.Error()
	}
	s := &Session{Token: token, User: user}
	if err := s.Validate(); err != nil {
		return nil, err.Error()
	}
	return s, ""
}

// SaveSession replaces the stored session.
func (w *Watcher) SaveSession(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid session: %w", err)
	}
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := w.durable.Set(ctx, KeyToken, s.Token); err != nil {
		return err
	}
	if err := w.durable.Set(ctx, KeyUser, string(user)); err != nil {
		// Leave nothing half-written behind.
		_ = w.durable.Delete(ctx, KeyToken)
		return err
	}
	w.logger.Debug("session saved", "login", s.User.Login)
	return nil
}

// ClearSession removes the stored session.
func (w *Watcher) ClearSession(ctx context.Context) error {
	if err := w.durable.Delete(ctx, KeyToken); err != nil {
		return err
	}
	if err := w.durable.Delete(ctx, KeyUser); err != nil {
		return err
	}
	w.logger.Debug("session cleared")
	return nil
}

// MarkResumeFlow sets the one-shot flag checked after an OAuth round trip.
func (w *Watcher) MarkResumeFlow(ctx context.Context) error {
	return w.ephemeral.Set(ctx, KeyResumeFlow, "true")
}

// ConsumeResumeFlag reports whether the resume flag was set and removes it.
func (w *Watcher) ConsumeResumeFlag(ctx context.Context) (bool, error) {
	v, ok, err := w.ephemeral.Get(ctx, KeyResumeFlow)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := w.ephemeral.Delete(ctx, KeyResumeFlow); err != nil {
		return false, err
	}
	return v == "true", nil
}

// Watch runs once per process. A valid session or a consumed resume flag with a
// token available moves target straight to repository selection.
func (w *Watcher) Watch(ctx context.Context, target Resumer) (*Session, error) {
	w.once.Do(func() {
		w.watched, w.err = w.watch(ctx, target)
	})
	return w.watched, w.err
}

func (w *Watcher) watch(ctx context.Context, target Resumer) (*Session, error) {
	s, err := w.LoadSession(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := w.ConsumeResumeFlag(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		if resume {
			w.logger.Debug("resume flag consumed without a token")
		}
		return nil, nil
	}

	target.HandleAuthSuccess(s.Token)
	if err := target.SetStep(flow.GitHubStepRepoSelect); err != nil {
		return nil, err
	}
	w.logger.Debug("resumed github flow", "login", s.User.Login, "resume_flag", resume)
	return s, nil
}
