package v1alpha1

// AliasList is the on-disk representation of the alias store.
// Order of Aliases is the order in which they were defined.
type AliasList struct {
	TypeMeta `yaml:",inline"`

	// UpdatedAt is stamped each time the file is written.
	// +optional
	UpdatedAt Time `yaml:"updatedAt,omitempty"`

	Aliases []AliasSpec `yaml:"aliases"`
}

// AliasSpec binds an alias name to a command run in an instance.
type AliasSpec struct {
	// Name is the alias as typed on the command line. Must be a valid filename.
	Name string `yaml:"name"`

	// Instance is the instance the command runs in.
	Instance string `yaml:"instance"`

	// Command is the executable run in the instance.
	Command string `yaml:"command"`
}
