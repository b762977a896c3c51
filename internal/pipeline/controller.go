// Package pipeline implements the stage-transition state machine for the
// sales board: direct moves between active stages, the confirmation
// workflow gating the terminal stages, and the board projection.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// confirmationTTL bounds how long a requested terminal move stays pending.
const confirmationTTL = 5 * time.Minute

// Confirmation is a pending terminal-stage move awaiting the second step
// of the workflow. Tokens are single use.
type Confirmation struct {
	Token     string    `json:"token"`
	LeadID    string    `json:"lead_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Controller orchestrates stage transitions.
type Controller struct {
	store         store.Store
	catalog       *catalog.Catalog
	fallbackStage string
	now           func() time.Time

	mu      sync.Mutex
	pending map[string]Confirmation
}

// New creates a controller. fallbackStage names the board column under
// which leads with an unknown or deactivated stage render.
func New(st store.Store, cat *catalog.Catalog, fallbackStage string) *Controller {
	if fallbackStage == "" {
		fallbackStage = "New"
	}
	return &Controller{
		store:         st,
		catalog:       cat,
		fallbackStage: fallbackStage,
		now:           time.Now,
		pending:       make(map[string]Confirmation),
	}
}

// Move performs a direct stage transition (drag-and-drop or explicit
// select). Terminal stages are rejected with ErrConfirmationRequired;
// targets absent from the active catalog are rejected with ErrUnknownStage.
// A persistence failure is returned to the caller as-is, never silently
// swallowed.
func (c *Controller) Move(leadID, target string) (*models.Lead, error) {
	if models.IsTerminalStage(target) {
		return nil, fmt.Errorf("move to %s: %w", target, apperr.ErrConfirmationRequired)
	}
	stage, ok := c.catalog.Lookup(target)
	if !ok || stage.IsSystem || !stage.IsActive {
		return nil, fmt.Errorf("move to %q: %w", target, apperr.ErrUnknownStage)
	}

	if err := c.store.UpdateLeadStage(leadID, target, c.now()); err != nil {
		return nil, err
	}
	return c.store.GetLead(leadID)
}

// RequestTerminal begins the two-step workflow for moving a lead to Closed
// or Dead. No state changes until the returned token is confirmed.
func (c *Controller) RequestTerminal(leadID, stage string) (Confirmation, error) {
	if !models.IsTerminalStage(stage) {
		return Confirmation{}, fmt.Errorf("%q is not a terminal stage: %w", stage, apperr.ErrValidation)
	}
	lead, err := c.store.GetLead(leadID)
	if err != nil {
		return Confirmation{}, err
	}

	conf := Confirmation{
		Token:     uuid.NewString(),
		LeadID:    lead.ID,
		Stage:     stage,
		Message:   consequenceMessage(lead, stage),
		ExpiresAt: c.now().Add(confirmationTTL),
	}

	c.mu.Lock()
	c.pending[conf.Token] = conf
	c.mu.Unlock()
	return conf, nil
}

// ConfirmTerminal applies a pending terminal move. The token is consumed
// whether or not the persistence write succeeds; a failed write is
// reported to the caller, who may request a fresh confirmation.
func (c *Controller) ConfirmTerminal(token string) (*models.Lead, error) {
	conf, err := c.takePending(token)
	if err != nil {
		return nil, err
	}
	if err := c.store.UpdateLeadStage(conf.LeadID, conf.Stage, c.now()); err != nil {
		return nil, err
	}
	return c.store.GetLead(conf.LeadID)
}

// CancelTerminal discards a pending terminal move. The lead's stage is
// left untouched.
func (c *Controller) CancelTerminal(token string) error {
	_, err := c.takePending(token)
	return err
}

func (c *Controller) takePending(token string) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conf, ok := c.pending[token]
	if !ok {
		return Confirmation{}, fmt.Errorf("confirmation token: %w", apperr.ErrNotFound)
	}
	delete(c.pending, token)
	if c.now().After(conf.ExpiresAt) {
		return Confirmation{}, fmt.Errorf("confirmation token expired: %w", apperr.ErrNotFound)
	}
	return conf, nil
}

func consequenceMessage(lead *models.Lead, stage string) string {
	name := lead.FirstName + " " + lead.LastName
	switch stage {
	case models.StageClosed:
		return fmt.Sprintf("Mark %s as Closed? The lead leaves the active board and the deal is recorded as won.", name)
	default:
		return fmt.Sprintf("Mark %s as Dead? The lead leaves the active board and will no longer be worked.", name)
	}
}
