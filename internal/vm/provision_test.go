package vm

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/naming"
	"github.com/jbweber/corral/internal/rpc"
	"github.com/jbweber/corral/internal/settings"
)

const testPetEnv = "the-petenv"

func newTestRunner(mounts string) (*Runner, *mockDaemon, *mockSettings, *bytes.Buffer) {
	daemon := newMockDaemon()
	s := newMockSettings(map[string]string{settings.MountsKey: mounts})
	out := &bytes.Buffer{}
	return &Runner{
		Daemon:   daemon,
		Settings: s,
		Home:     "/home/user",
		Out:      out,
		Log:      zerolog.Nop(),
	}, daemon, s, out
}

func abortedWith(errs map[string]v1alpha1.InstanceErrorKind) error {
	return rpc.Aborted("fakemsg", errs)
}

func TestStart_LaunchesPetEnvIfAbsent(t *testing.T) {
	r, daemon, _, _ := newTestRunner("true")
	next := sequence(abortedWith(map[string]v1alpha1.InstanceErrorKind{testPetEnv: v1alpha1.InstanceDoesNotExist}))
	daemon.startFunc = func(*v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
		return &v1alpha1.StartReply{}, next()
	}

	if err := r.Start(context.Background(), []string{testPetEnv}, testPetEnv); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want := []string{"start", "launch", "mount", "start"}
	if !reflect.DeepEqual(daemon.calls, want) {
		t.Errorf("calls = %v, want %v", daemon.calls, want)
	}
	if daemon.launchCalls[0].InstanceName != testPetEnv {
		t.Errorf("launched %q, want %q", daemon.launchCalls[0].InstanceName, testPetEnv)
	}

	mount := daemon.mountCalls[0]
	if mount.SourcePath != "/home/user" {
		t.Errorf("mount source = %q", mount.SourcePath)
	}
	wantTarget := []v1alpha1.TargetPathInfo{{InstanceName: testPetEnv, TargetPath: naming.HomeMountTarget}}
	if !reflect.DeepEqual(mount.TargetPaths, wantTarget) {
		t.Errorf("mount targets = %+v, want %+v", mount.TargetPaths, wantTarget)
	}
}

func TestStart_LaunchesPetEnvAmongOthersPresent(t *testing.T) {
	r, daemon, _, _ := newTestRunner("true")
	next := sequence(abortedWith(map[string]v1alpha1.InstanceErrorKind{testPetEnv: v1alpha1.InstanceDoesNotExist}))
	daemon.startFunc = func(*v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
		return &v1alpha1.StartReply{}, next()
	}

	targets := []string{"foo", testPetEnv, "bar"}
	if err := r.Start(context.Background(), targets, testPetEnv); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(daemon.startCalls) != 2 {
		t.Fatalf("expected 2 start calls, got %d", len(daemon.startCalls))
	}
	for i, req := range daemon.startCalls {
		if !reflect.DeepEqual(req.InstanceNames, targets) {
			t.Errorf("start call %d targets = %v, want %v", i, req.InstanceNames, targets)
		}
	}
}

func TestStart_NoLaunchOnOtherFailures(t *testing.T) {
	tests := []struct {
		name      string
		targets   []string
		err       error
		wantLines []string
	}{
		{
			name:    "petenv deleted",
			targets: []string{testPetEnv},
			err:     abortedWith(map[string]v1alpha1.InstanceErrorKind{testPetEnv: v1alpha1.InstanceDeleted}),
			wantLines: []string{
				`instance "the-petenv" is deleted`,
			},
		},
		{
			name:    "petenv absent among others absent",
			targets: []string{testPetEnv, "foo", "bar"},
			err: abortedWith(map[string]v1alpha1.InstanceErrorKind{
				testPetEnv: v1alpha1.InstanceDoesNotExist,
				"foo":      v1alpha1.InstanceDoesNotExist,
				"bar":      v1alpha1.InstanceDoesNotExist,
			}),
			wantLines: []string{
				`instance "the-petenv" does not exist`,
				`instance "foo" does not exist`,
				`instance "bar" does not exist`,
			},
		},
		{
			name:    "petenv absent among others deleted",
			targets: []string{"foo", testPetEnv},
			err: abortedWith(map[string]v1alpha1.InstanceErrorKind{
				testPetEnv: v1alpha1.InstanceDoesNotExist,
				"foo":      v1alpha1.InstanceDeleted,
			}),
			wantLines: []string{
				`instance "foo" is deleted`,
				`instance "the-petenv" does not exist`,
			},
		},
		{
			name:    "other instance absent",
			targets: []string{"O_o"},
			err:     abortedWith(map[string]v1alpha1.InstanceErrorKind{"O_o": v1alpha1.InstanceDoesNotExist}),
			wantLines: []string{
				`instance "O_o" does not exist`,
			},
		},
		{
			name:    "other absent alongside petenv",
			targets: []string{testPetEnv, "zzz"},
			err:     abortedWith(map[string]v1alpha1.InstanceErrorKind{"zzz": v1alpha1.InstanceDeleted}),
			wantLines: []string{
				`instance "zzz" is deleted`,
			},
		},
		{
			name:    "aborted without detail",
			targets: []string{testPetEnv},
			err:     abortedWith(nil),
		},
		{
			name:    "not found with several targets",
			targets: []string{testPetEnv, "foo"},
			err:     status.Error(codes.NotFound, "msg"),
		},
		{
			name:    "internal error",
			targets: []string{testPetEnv},
			err:     status.Error(codes.Internal, "msg"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, daemon, _, _ := newTestRunner("true")
			daemon.startFunc = func(*v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
				return nil, tt.err
			}

			err := r.Start(context.Background(), tt.targets, testPetEnv)
			if err == nil {
				t.Fatal("expected error")
			}
			if exitcode.Of(err) != exitcode.CommandFail {
				t.Errorf("exit code = %d, want %d", exitcode.Of(err), exitcode.CommandFail)
			}
			if len(daemon.launchCalls) != 0 {
				t.Errorf("launch should not be called, got %d calls", len(daemon.launchCalls))
			}
			if len(daemon.startCalls) != 1 {
				t.Errorf("expected a single start call, got %d", len(daemon.startCalls))
			}

			msg := err.Error()
			if !strings.HasPrefix(msg, "start failed: ") {
				t.Errorf("error = %q, want start failure report", msg)
			}
			if len(tt.wantLines) > 0 {
				want := "start failed: " + status.Convert(tt.err).Message() + "\n" + strings.Join(tt.wantLines, "\n")
				if msg != want {
					t.Errorf("error = %q, want %q", msg, want)
				}
			}
		})
	}
}

func TestStart_RetryIsFinal(t *testing.T) {
	r, daemon, _, _ := newTestRunner("true")
	absent := abortedWith(map[string]v1alpha1.InstanceErrorKind{testPetEnv: v1alpha1.InstanceDoesNotExist})
	daemon.startFunc = func(*v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
		return nil, absent
	}

	err := r.Start(context.Background(), []string{testPetEnv}, testPetEnv)
	if err == nil {
		t.Fatal("expected error")
	}
	want := []string{"start", "launch", "mount", "start"}
	if !reflect.DeepEqual(daemon.calls, want) {
		t.Errorf("calls = %v, want %v", daemon.calls, want)
	}
}

func TestSSHInfo_LaunchesPetEnvIfAbsent(t *testing.T) {
	r, daemon, _, _ := newTestRunner("true")
	next := sequence(status.Error(codes.NotFound, "msg"))
	daemon.sshInfoFunc = func(req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
		if err := next(); err != nil {
			return nil, err
		}
		return &v1alpha1.SSHInfoReply{SSHInfo: map[string]v1alpha1.SSHInfo{
			testPetEnv: {Host: "10.1.1.1", Port: 22, Username: "ubuntu"},
		}}, nil
	}

	info, err := r.SSHInfo(context.Background(), "shell", testPetEnv, testPetEnv)
	if err != nil {
		t.Fatalf("SSHInfo() error = %v", err)
	}
	if info.Host != "10.1.1.1" {
		t.Errorf("host = %q", info.Host)
	}
	want := []string{"ssh_info", "launch", "mount", "ssh_info"}
	if !reflect.DeepEqual(daemon.calls, want) {
		t.Errorf("calls = %v, want %v", daemon.calls, want)
	}
}

func TestSSHInfo_StartsStoppedInstance(t *testing.T) {
	for _, instance := range []string{"ordinary", testPetEnv} {
		t.Run(instance, func(t *testing.T) {
			r, daemon, _, _ := newTestRunner("true")
			next := sequence(status.Error(codes.Aborted, "msg"))
			daemon.sshInfoFunc = func(req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
				if err := next(); err != nil {
					return nil, err
				}
				return &v1alpha1.SSHInfoReply{SSHInfo: map[string]v1alpha1.SSHInfo{instance: {}}}, nil
			}

			if _, err := r.SSHInfo(context.Background(), "shell", instance, testPetEnv); err != nil {
				t.Fatalf("SSHInfo() error = %v", err)
			}
			want := []string{"ssh_info", "start", "ssh_info"}
			if !reflect.DeepEqual(daemon.calls, want) {
				t.Errorf("calls = %v, want %v", daemon.calls, want)
			}
			if !reflect.DeepEqual(daemon.startCalls[0].InstanceNames, []string{instance}) {
				t.Errorf("started %v", daemon.startCalls[0].InstanceNames)
			}
		})
	}
}

func TestSSHInfo_Failures(t *testing.T) {
	tests := []struct {
		name     string
		instance string
		err      error
	}{
		{name: "other instance absent", instance: "ordinary", err: status.Error(codes.NotFound, "msg")},
		{name: "petenv deleted", instance: testPetEnv, err: status.Error(codes.FailedPrecondition, "msg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, daemon, _, _ := newTestRunner("true")
			daemon.sshInfoFunc = func(*v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
				return nil, tt.err
			}

			_, err := r.SSHInfo(context.Background(), "shell", tt.instance, testPetEnv)
			if err == nil || exitcode.Of(err) != exitcode.CommandFail {
				t.Fatalf("error = %v, want command failure", err)
			}
			if !reflect.DeepEqual(daemon.calls, []string{"ssh_info"}) {
				t.Errorf("calls = %v", daemon.calls)
			}
		})
	}
}

func TestSSHInfo_StartFailureIsFinal(t *testing.T) {
	r, daemon, _, _ := newTestRunner("true")
	daemon.sshInfoFunc = func(*v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
		return nil, status.Error(codes.Aborted, "stopped")
	}
	daemon.startFunc = func(*v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
		return nil, status.Error(codes.Internal, "cannot start")
	}

	_, err := r.SSHInfo(context.Background(), "exec", "ordinary", testPetEnv)
	if err == nil || !strings.HasPrefix(err.Error(), "start failed: cannot start") {
		t.Fatalf("error = %v", err)
	}
	if len(daemon.sshInfoCalls) != 1 {
		t.Errorf("expected no retry, got %d ssh_info calls", len(daemon.sshInfoCalls))
	}
}

func TestAutomount_Disabled(t *testing.T) {
	r, daemon, _, out := newTestRunner("false")
	daemon.sshInfoFunc = func() func(*v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
		next := sequence(status.Error(codes.NotFound, "msg"))
		return func(req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
			if err := next(); err != nil {
				return nil, err
			}
			return &v1alpha1.SSHInfoReply{SSHInfo: map[string]v1alpha1.SSHInfo{testPetEnv: {}}}, nil
		}
	}()

	if _, err := r.SSHInfo(context.Background(), "shell", testPetEnv, testPetEnv); err != nil {
		t.Fatalf("SSHInfo() error = %v", err)
	}
	if len(daemon.mountCalls) != 0 {
		t.Errorf("mount should not be called when mounts are disabled")
	}
	if !strings.Contains(out.String(), "Skipping 'Home' mount due to disabled mounts feature\n") {
		t.Errorf("missing skip notice, output %q", out.String())
	}
}

func TestAutomount_SettingReadFailure(t *testing.T) {
	r, daemon, s, out := newTestRunner("true")
	s.err = &settings.Error{Kind: settings.KindRemote, Key: settings.MountsKey, Err: status.Error(codes.Internal, "oops")}
	daemon.sshInfoFunc = func(*v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
		return nil, status.Error(codes.NotFound, "msg")
	}

	_, err := r.SSHInfo(context.Background(), "shell", testPetEnv, testPetEnv)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "shell failed: oops" {
		t.Errorf("error = %q", err.Error())
	}
	if exitcode.Of(err) != exitcode.CommandFail {
		t.Errorf("exit code = %d", exitcode.Of(err))
	}
	want := []string{"ssh_info", "launch"}
	if !reflect.DeepEqual(daemon.calls, want) {
		t.Errorf("calls = %v, want %v", daemon.calls, want)
	}
	if out.Len() != 0 {
		t.Errorf("no notice expected, got %q", out.String())
	}
}

func TestAutomount_MountFailure(t *testing.T) {
	r, daemon, _, _ := newTestRunner("true")
	daemon.sshInfoFunc = func(*v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
		return nil, status.Error(codes.NotFound, "msg")
	}
	daemon.mountFunc = func(*v1alpha1.MountRequest) (*v1alpha1.MountReply, error) {
		return nil, status.Error(codes.InvalidArgument, "bad mount")
	}

	_, err := r.SSHInfo(context.Background(), "shell", testPetEnv, testPetEnv)
	if err == nil || !strings.HasPrefix(err.Error(), "mount failed: bad mount") {
		t.Fatalf("error = %v", err)
	}
	want := []string{"ssh_info", "launch", "mount"}
	if !reflect.DeepEqual(daemon.calls, want) {
		t.Errorf("calls = %v, want %v", daemon.calls, want)
	}
}

func TestLaunchFailureStopsProvisioning(t *testing.T) {
	r, daemon, s, _ := newTestRunner("true")
	daemon.sshInfoFunc = func(*v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
		return nil, status.Error(codes.NotFound, "msg")
	}
	daemon.launchFunc = func(*v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error) {
		return nil, status.Error(codes.Internal, "no image")
	}

	_, err := r.SSHInfo(context.Background(), "shell", testPetEnv, testPetEnv)
	if err == nil || !strings.HasPrefix(err.Error(), "launch failed: no image") {
		t.Fatalf("error = %v", err)
	}
	if len(s.getCalls) != 0 {
		t.Errorf("mounts setting should not be read, got %v", s.getCalls)
	}
}

func TestOnlyPetEnvMissing(t *testing.T) {
	tests := []struct {
		name   string
		errs   map[string]v1alpha1.InstanceErrorKind
		petenv string
		want   bool
	}{
		{name: "petenv missing", errs: map[string]v1alpha1.InstanceErrorKind{"p": v1alpha1.InstanceDoesNotExist}, petenv: "p", want: true},
		{name: "petenv deleted", errs: map[string]v1alpha1.InstanceErrorKind{"p": v1alpha1.InstanceDeleted}, petenv: "p", want: false},
		{name: "other missing", errs: map[string]v1alpha1.InstanceErrorKind{"q": v1alpha1.InstanceDoesNotExist}, petenv: "p", want: false},
		{name: "empty map", errs: map[string]v1alpha1.InstanceErrorKind{}, petenv: "p", want: false},
		{name: "petenv disabled", errs: map[string]v1alpha1.InstanceErrorKind{"": v1alpha1.InstanceDoesNotExist}, petenv: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := onlyPetEnvMissing(tt.errs, tt.petenv); got != tt.want {
				t.Errorf("onlyPetEnvMissing() = %v, want %v", got, tt.want)
			}
		})
	}
}
