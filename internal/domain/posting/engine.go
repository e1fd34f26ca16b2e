package posting

import (
	"context"
	"fmt"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/security"
	"tradelink/internal/core/tx"
	"tradelink/pkg/logger"
)

// MovementStore persists ledger movements.
// Implemented by the inventory register repository.
type MovementStore interface {
	// SaveMovements appends movements of one recorder version
	SaveMovements(ctx context.Context, movements []entity.InventoryMovement) error

	// DeleteStaleMovements removes movements of older recorder versions
	DeleteStaleMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// DeleteMovements removes all movements of a recorder
	DeleteMovements(ctx context.Context, recorderID id.ID) error
}

// AuditRecorder writes post/unpost entries to the audit trail.
type AuditRecorder interface {
	RecordPosting(ctx context.Context, docType string, docID id.ID, action string, details map[string]any) error
}

// Engine posts and unposts documents.
// The movement write, the stale-version sweep, and the document update
// happen in one transaction: the ledger never reflects a half-posted
// document.
type Engine struct {
	store     MovementStore
	txManager tx.Manager
	policy    security.PostingPolicy
	audit     AuditRecorder
}

// NewEngine creates a posting engine.
func NewEngine(store MovementStore, txManager tx.Manager, policy security.PostingPolicy) *Engine {
	if policy == nil {
		policy = security.OpenPolicy{}
	}
	return &Engine{
		store:     store,
		txManager: txManager,
		policy:    policy,
	}
}

// WithAudit attaches an audit recorder. Audit failures do not fail the
// posting itself.
func (e *Engine) WithAudit(audit AuditRecorder) *Engine {
	e.audit = audit
	return e
}

func (e *Engine) recordAudit(ctx context.Context, doc Postable, action string, details map[string]any) {
	if e.audit == nil {
		return
	}
	if err := e.audit.RecordPosting(ctx, doc.GetDocumentType(), doc.GetID(), action, details); err != nil {
		logger.Warn(ctx, "audit write failed",
			"type", doc.GetDocumentType(),
			"id", doc.GetID(),
			"action", action,
			"error", err,
		)
	}
}

// Post records the document's movements in the ledger.
// updateDoc persists the document itself (create or update) inside the
// same transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
		return err
	}
	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}
	if err := movements.Validate(); err != nil {
		return apperror.NewValidation(err.Error()).
			WithDetail("document_id", doc.GetID().String())
	}

	wasPosted := doc.IsPosted()
	prevVersion := doc.GetPostedVersion()

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc.MarkPosted()

		if err := e.store.SaveMovements(ctx, movements.Inventory); err != nil {
			return fmt.Errorf("save movements: %w", err)
		}
		// Re-posting: sweep movements of older versions
		if err := e.store.DeleteStaleMovements(ctx, doc.GetID(), doc.GetPostedVersion()); err != nil {
			return fmt.Errorf("delete stale movements: %w", err)
		}
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	})
	if err != nil {
		// Restore in-memory state after rollback
		if !wasPosted {
			doc.MarkUnposted()
		}
		for doc.GetPostedVersion() > prevVersion {
			rollbackVersion(doc)
		}
		return err
	}

	logger.Info(ctx, "document posted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"version", doc.GetPostedVersion(),
		"movements", len(movements.Inventory),
	)
	e.recordAudit(ctx, doc, "post", map[string]any{
		"posted_version": doc.GetPostedVersion(),
		"movements":      len(movements.Inventory),
	})
	return nil
}

// Unpost removes the document's movements from the ledger.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentNotPosted,
			"document is not posted",
		).WithDetail("document_id", doc.GetID().String())
	}
	if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
		return err
	}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc.MarkUnposted()

		if err := e.store.DeleteMovements(ctx, doc.GetID()); err != nil {
			return fmt.Errorf("delete movements: %w", err)
		}
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	})
	if err != nil {
		doc.MarkPosted()
		rollbackVersion(doc)
		return err
	}

	logger.Info(ctx, "document unposted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
	)
	e.recordAudit(ctx, doc, "unpost", nil)
	return nil
}

// rollbackVersion undoes one MarkPosted version bump.
func rollbackVersion(doc Postable) {
	type versioned interface{ SetPostedVersion(v int) }
	if v, ok := doc.(versioned); ok {
		v.SetPostedVersion(doc.GetPostedVersion() - 1)
	}
}
