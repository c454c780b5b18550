package v1alpha1

import "fmt"

// InstanceErrorKind classifies why a multi-instance call failed for one instance.
type InstanceErrorKind int

const (
	// InstanceDoesNotExist means the daemon has no record of the instance.
	InstanceDoesNotExist InstanceErrorKind = iota + 1
	// InstanceDeleted means the instance was deleted but not yet purged.
	InstanceDeleted
)

// String returns the human-readable description used in failure reports.
func (k InstanceErrorKind) String() string {
	switch k {
	case InstanceDoesNotExist:
		return "does not exist"
	case InstanceDeleted:
		return "is deleted"
	default:
		return fmt.Sprintf("failed (%d)", int(k))
	}
}

// InstanceErrors is the detail payload attached to an Aborted status.
type InstanceErrors struct {
	Errors map[string]InstanceErrorKind `cbor:"instance_errors"`
}
