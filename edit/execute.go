package edit

import (
	"github.com/ncforge/ncengine/ncerr"
)

// NodeStore is the per-node surface a Plan executor requires of a
// datastore. Exists and Apply address nodes by their Step path.
type NodeStore interface {
	// Exists reports whether a node is present at path
	Exists(path string) bool
	// Apply performs one resolved edit step
	Apply(step Step) *ncerr.Error
}

// Transactional is implemented by stores supporting whole-transaction
// revert, required for the rollback-on-error option.
type Transactional interface {
	Rollback() error
}

// Execute runs a resolved Plan against store, honoring the plan's
// error and test options.
//
// Existence semantics are enforced here: create of a present node is
// data-exists, delete of an absent node is data-missing, while remove
// of an absent node is a silent no-op. A nil return means every step
// was applied (or, for test-only, validated) successfully.
func Execute(plan *Plan, store NodeStore) ncerr.List {
	if plan.URL != "" {
		// remote content is fetched and resolved by the caller before
		// execution; a URL plan carries no steps to run
		return ncerr.List{ncerr.OperationFailed(
			ncerr.WithMessage("cannot execute an unresolved url-sourced plan"))}
	}

	if plan.TestOption != TestOptionSet {
		if errs := validate(plan, store); len(errs) > 0 || plan.TestOption == TestOptionTestOnly {
			return errs
		}
	}

	var errs ncerr.List
	for _, step := range plan.Steps {
		if stepErr := applyStep(step, store); stepErr != nil {
			switch plan.ErrorOption {
			case ErrorOptionContinue:
				errs = append(errs, stepErr)
			case ErrorOptionRollback:
				return append(ncerr.List{stepErr}, rollback(store)...)
			default:
				return ncerr.List{stepErr}
			}
		}
	}
	return errs
}

// validate checks every step's existence invariant without applying
// anything
func validate(plan *Plan, store NodeStore) (errs ncerr.List) {
	for _, step := range plan.Steps {
		switch step.Op {
		case OpCreate:
			if store.Exists(step.Path) {
				errs = append(errs, ncerr.DataExists(ncerr.WithPath(step.Path)))
			}
		case OpDelete:
			if !store.Exists(step.Path) {
				errs = append(errs, ncerr.DataMissing(ncerr.WithPath(step.Path)))
			}
		}
	}
	return errs
}

func applyStep(step Step, store NodeStore) *ncerr.Error {
	switch step.Op {
	case OpRemove:
		if !store.Exists(step.Path) {
			return nil
		}
	case OpDelete:
		if !store.Exists(step.Path) {
			return ncerr.DataMissing(ncerr.WithPath(step.Path))
		}
	case OpCreate:
		if store.Exists(step.Path) {
			return ncerr.DataExists(ncerr.WithPath(step.Path))
		}
	}
	return store.Apply(step)
}

func rollback(store NodeStore) ncerr.List {
	tx, ok := store.(Transactional)
	if !ok {
		return ncerr.List{ncerr.OperationNotSupported(
			ncerr.WithMessage("datastore does not support rollback-on-error"))}
	}
	if err := tx.Rollback(); err != nil {
		return ncerr.List{ncerr.RollbackFailed(ncerr.WithMessage(err.Error()))}
	}
	return nil
}
