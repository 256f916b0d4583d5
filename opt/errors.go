package opt

import "errors"

// Composition failures fall into three categories. All are fatal to the
// current Compose call; nothing is caught or retried internally, and no
// partial model is guaranteed usable after a failure.
var (
	// ErrConfig marks caller input defects: a resource declared with
	// conflicting or unrecognized ownership domains, or a malformed
	// application. Retrying without correcting the input cannot succeed.
	ErrConfig = errors.New("invalid configuration")

	// ErrComposition marks inconsistencies surfaced by collaborators while
	// the model is assembled, e.g. traffic classes with mismatched epoch
	// counts. The composer propagates these unchanged.
	ErrComposition = errors.New("composition failed")

	// ErrValidation marks out-of-contract arguments: explicit weights
	// outside [0,1] or of the wrong length, and epoch/fairness modes or
	// objective kinds nobody recognizes.
	ErrValidation = errors.New("invalid argument")
)
