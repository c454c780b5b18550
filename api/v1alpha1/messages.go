package v1alpha1

// RequestMeta is carried by every request sent to the daemon.
type RequestMeta struct {
	// VerbosityLevel mirrors the number of -v flags given on the command line.
	VerbosityLevel int `cbor:"verbosity_level,omitempty" json:"-" yaml:"-"`

	// Timeout is the user supplied --timeout in seconds, zero when unset.
	Timeout int `cbor:"timeout,omitempty" json:"-" yaml:"-"`
}

// Meta returns the request metadata so decorators can stamp it.
func (m *RequestMeta) Meta() *RequestMeta { return m }

// Request is implemented by every request message.
type Request interface {
	Meta() *RequestMeta
}

// ReplyMeta is carried by every reply streamed back from the daemon.
type ReplyMeta struct {
	// LogLine is a daemon log line forwarded to the client at the requested verbosity.
	LogLine string `cbor:"log_line,omitempty" json:"-" yaml:"-"`
}

// GetLogLine returns the forwarded daemon log line, if any.
func (m *ReplyMeta) GetLogLine() string { return m.LogLine }

// LaunchRequest creates and starts a new instance.
type LaunchRequest struct {
	RequestMeta
	InstanceName string `cbor:"instance_name,omitempty"`
	Image        string `cbor:"image,omitempty"`
	NumCores     int    `cbor:"num_cores,omitempty"`
	MemSize      string `cbor:"mem_size,omitempty"`
	DiskSpace    string `cbor:"disk_space,omitempty"`

	// CloudInitUserData is a complete cloud-config document, header included.
	CloudInitUserData string `cbor:"cloud_init_user_data,omitempty"`
}

// LaunchReply is the final reply of a launch.
type LaunchReply struct {
	ReplyMeta
	VMInstanceName string `cbor:"vm_instance_name"`
	ReplyMessage   string `cbor:"reply_message,omitempty"`
}

// TargetPathInfo names one mount destination.
type TargetPathInfo struct {
	InstanceName string `cbor:"instance_name"`
	TargetPath   string `cbor:"target_path"`
}

// MountRequest shares a host directory with one or more instances.
type MountRequest struct {
	RequestMeta
	SourcePath  string           `cbor:"source_path"`
	TargetPaths []TargetPathInfo `cbor:"target_paths"`
}

// MountReply acknowledges a mount.
type MountReply struct {
	ReplyMeta
}

// InfoRequest asks for details about instances; an empty list means all.
type InfoRequest struct {
	RequestMeta
	InstanceNames        []string `cbor:"instance_names,omitempty"`
	NoRuntimeInformation bool     `cbor:"no_runtime_information,omitempty"`
}

// MountInfo describes one mount of an instance.
type MountInfo struct {
	SourcePath string `cbor:"source_path" json:"source_path" yaml:"source_path"`
	TargetPath string `cbor:"target_path" json:"target_path" yaml:"target_path"`
}

// InstanceInfo is the detailed view of one instance.
type InstanceInfo struct {
	Name         string      `cbor:"name" json:"name" yaml:"name"`
	State        string      `cbor:"state" json:"state" yaml:"state"`
	ImageRelease string      `cbor:"image_release,omitempty" json:"image_release,omitempty" yaml:"image_release,omitempty"`
	IPv4         []string    `cbor:"ipv4,omitempty" json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	CPUCount     int         `cbor:"cpu_count,omitempty" json:"cpu_count,omitempty" yaml:"cpu_count,omitempty"`
	MemoryUsage  string      `cbor:"memory_usage,omitempty" json:"memory_usage,omitempty" yaml:"memory_usage,omitempty"`
	DiskUsage    string      `cbor:"disk_usage,omitempty" json:"disk_usage,omitempty" yaml:"disk_usage,omitempty"`
	Mounts       []MountInfo `cbor:"mounts,omitempty" json:"mounts,omitempty" yaml:"mounts,omitempty"`
}

// InfoReply carries instance details.
type InfoReply struct {
	ReplyMeta
	Info []InstanceInfo `cbor:"info"`
}

// ListRequest asks for a summary of all instances.
type ListRequest struct {
	RequestMeta
}

// ListEntry is the summary view of one instance.
type ListEntry struct {
	Name    string   `cbor:"name" json:"name" yaml:"name"`
	State   string   `cbor:"state" json:"state" yaml:"state"`
	IPv4    []string `cbor:"ipv4,omitempty" json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	Release string   `cbor:"release,omitempty" json:"release,omitempty" yaml:"release,omitempty"`
}

// ListReply carries instance summaries.
type ListReply struct {
	ReplyMeta
	Instances []ListEntry `cbor:"instances"`
}

// StartRequest starts instances; an empty list means all.
type StartRequest struct {
	RequestMeta
	InstanceNames []string `cbor:"instance_names,omitempty"`
}

// StartReply acknowledges a start.
type StartReply struct {
	ReplyMeta
}

// StopRequest stops instances, optionally after a delay or cancelling a pending stop.
type StopRequest struct {
	RequestMeta
	InstanceNames  []string `cbor:"instance_names,omitempty"`
	TimeMinutes    int      `cbor:"time_minutes,omitempty"`
	CancelShutdown bool     `cbor:"cancel_shutdown,omitempty"`
}

// StopReply acknowledges a stop.
type StopReply struct {
	ReplyMeta
}

// SuspendRequest suspends instances.
type SuspendRequest struct {
	RequestMeta
	InstanceNames []string `cbor:"instance_names,omitempty"`
}

// SuspendReply acknowledges a suspend.
type SuspendReply struct {
	ReplyMeta
}

// RestartRequest restarts instances.
type RestartRequest struct {
	RequestMeta
	InstanceNames []string `cbor:"instance_names,omitempty"`
}

// RestartReply acknowledges a restart.
type RestartReply struct {
	ReplyMeta
}

// DeleteRequest deletes instances, purging them when Purge is set.
type DeleteRequest struct {
	RequestMeta
	InstanceNames []string `cbor:"instance_names,omitempty"`
	Purge         bool     `cbor:"purge,omitempty"`
}

// DeleteReply lists the instances that were purged.
type DeleteReply struct {
	ReplyMeta
	PurgedInstances []string `cbor:"purged_instances,omitempty"`
}

// SSHInfoRequest asks for connection details of running instances.
type SSHInfoRequest struct {
	RequestMeta
	InstanceNames []string `cbor:"instance_names"`
}

// SSHInfo holds what a client needs to open an SSH session to an instance.
type SSHInfo struct {
	Host          string `cbor:"host"`
	Port          int    `cbor:"port"`
	Username      string `cbor:"username"`
	PrivKeyBase64 string `cbor:"priv_key_base64"`
}

// SSHInfoReply maps instance names to connection details.
type SSHInfoReply struct {
	ReplyMeta
	SSHInfo map[string]SSHInfo `cbor:"ssh_info"`
}

// GetRequest reads a daemon-owned setting.
type GetRequest struct {
	RequestMeta
	Key string `cbor:"key"`
}

// GetReply carries a daemon-owned setting value.
type GetReply struct {
	ReplyMeta
	Value string `cbor:"value"`
}

// SetRequest writes a daemon-owned setting.
type SetRequest struct {
	RequestMeta
	Key string `cbor:"key"`
	Val string `cbor:"val"`
}

// SetReply acknowledges a settings write.
type SetReply struct {
	ReplyMeta
}

// KeysRequest lists the daemon-owned settings keys.
type KeysRequest struct {
	RequestMeta
}

// KeysReply carries daemon-owned settings keys.
type KeysReply struct {
	ReplyMeta
	Keys []string `cbor:"settings_keys"`
}

// VersionRequest asks for the daemon version.
type VersionRequest struct {
	RequestMeta
}

// VersionReply carries the daemon version.
type VersionReply struct {
	ReplyMeta
	Version string `cbor:"version"`
}
