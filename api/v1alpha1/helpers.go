package v1alpha1

import "time"

const (
	// GroupName is the API group for corral resources.
	GroupName = "corral.dev"

	// Version is the API version.
	Version = "v1alpha1"

	// AliasListKind is the kind string for the alias file.
	AliasListKind = "AliasList"
)

// APIVersion returns the group/version string written to files.
func APIVersion() string {
	return GroupName + "/" + Version
}

// NewAliasList creates an empty AliasList with TypeMeta set.
func NewAliasList() *AliasList {
	return &AliasList{
		TypeMeta: TypeMeta{
			APIVersion: APIVersion(),
			Kind:       AliasListKind,
		},
		Aliases: []AliasSpec{},
	}
}

// SetDefaultAPIVersion fills in apiVersion and kind when a file omitted them.
func SetDefaultAPIVersion(list *AliasList) {
	if list.APIVersion == "" {
		list.APIVersion = APIVersion()
	}
	if list.Kind == "" {
		list.Kind = AliasListKind
	}
}

// Touch stamps UpdatedAt with the given time in UTC.
func (l *AliasList) Touch(now time.Time) {
	l.UpdatedAt = Time{Time: now.UTC().Truncate(time.Second)}
}
