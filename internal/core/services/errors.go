package services

import (
	"fmt"

	"github.com/SscSPs/prompt_books/internal/apperrors"
)

var (
	ErrDraftPosted         = fmt.Errorf("%w: posted drafts cannot be edited", apperrors.ErrConflict)
	ErrDraftAlreadyPosted  = fmt.Errorf("%w: draft is already posted", apperrors.ErrConflict)
	ErrNotApproved         = fmt.Errorf("%w: draft must be approved before posting", apperrors.ErrConflict)
	ErrManualResolution    = fmt.Errorf("%w: reconcile_bank must be resolved manually", apperrors.ErrConfiguration)
	ErrNoMapping           = fmt.Errorf("%w: intent does not post to the ledger", apperrors.ErrValidation)
	ErrIntentNotMappable   = fmt.Errorf("%w: intent cannot carry an account mapping", apperrors.ErrValidation)
	ErrDescriptionMissing  = fmt.Errorf("%w: journal description is required", apperrors.ErrValidation)
	ErrAccountReferenced   = fmt.Errorf("%w: account is still referenced", apperrors.ErrConflict)
	ErrStaleDraftVersion   = fmt.Errorf("%w: draft was modified by someone else", apperrors.ErrConflict)
	ErrInvalidDraftPayload = fmt.Errorf("%w: invalid draft", apperrors.ErrValidation)
)

// errDraftRaced is returned inside the posting unit of work when another poster linked the draft first.
var errDraftRaced = fmt.Errorf("%w: draft was posted concurrently", apperrors.ErrConflict)
