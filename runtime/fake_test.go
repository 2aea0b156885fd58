package runtime

import (
	"sync"

	"github.com/wippyai/hookinject/engine"
)

// fakeEngine records calls and returns scripted results.
type fakeEngine struct {
	mu    sync.Mutex
	calls []string

	nextPid int
	nextID  uint64

	spawnErr     error
	injectErr    error
	launchErr    error
	resumeErr    error
	demonitorErr error

	demonitored []uint64
	resumed     []int
	lastLaunch  engine.LaunchParams
	closed      int
}

var _ engine.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{nextPid: 4000, nextID: 100}
}

func (f *fakeEngine) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeEngine) InjectFile(pid int, path, entrypoint, data string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("inject_file")
	if f.injectErr != nil {
		return 0, f.injectErr
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeEngine) InjectBlob(pid int, blob []byte, entrypoint, data string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("inject_blob")
	if f.injectErr != nil {
		return 0, f.injectErr
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeEngine) InjectLaunch(p engine.LaunchParams, path, entrypoint, data string) (int, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("inject_launch")
	f.lastLaunch = p
	if f.launchErr != nil {
		return 0, 0, f.launchErr
	}
	f.nextPid++
	f.nextID++
	return f.nextPid, f.nextID, nil
}

func (f *fakeEngine) Spawn(p engine.LaunchParams) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("spawn")
	f.lastLaunch = p
	if f.spawnErr != nil {
		return 0, f.spawnErr
	}
	f.nextPid++
	return f.nextPid, nil
}

func (f *fakeEngine) Resume(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("resume")
	f.resumed = append(f.resumed, pid)
	return f.resumeErr
}

func (f *fakeEngine) Demonitor(id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("demonitor")
	f.demonitored = append(f.demonitored, id)
	return f.demonitorErr
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
