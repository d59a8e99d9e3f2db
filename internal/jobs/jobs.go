// Package jobs tracks background pipelines launched by the execution
// engine: each entry remembers the process group that runs it, the
// command line it was started from, and whether it is still running.
// Reaping is non-blocking so the interactive loop never stalls waiting
// on a background child.
package jobs

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/sys/unix"
)

// Job is one tracked background (or foreground, while it runs) pipeline.
type Job struct {
	PGID        int
	CommandLine string
	Background  bool
}

// Table is a thread-safe collection of live jobs. The zero value is ready
// to use. Access is guarded by a mutex rather than assumed
// single-threaded.
type Table struct {
	mu   sync.Mutex
	jobs []*Job
}

// FromSnapshot builds a Table pre-populated with the given jobs. Used to
// hand a re-exec'd stage child a copy of the shell's job table, since it
// cannot inherit it directly.
func FromSnapshot(snapshot []Job) *Table {
	t := &Table{}
	for _, j := range snapshot {
		job := j
		t.jobs = append(t.jobs, &job)
	}
	return t
}

// Snapshot returns a copy of the currently tracked jobs, suitable for
// handing to FromSnapshot.
func (t *Table) Snapshot() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Job, len(t.jobs))
	for i, j := range t.jobs {
		out[i] = *j
	}
	return out
}

// Add registers a newly started process group as a tracked job.
func (t *Table) Add(pgid int, cmdline string, background bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs = append(t.jobs, &Job{PGID: pgid, CommandLine: cmdline, Background: background})
}

// remove drops the job with the given pgid, if tracked. Caller must hold t.mu.
func (t *Table) remove(pgid int) {
	for i, j := range t.jobs {
		if j.PGID == pgid {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return
		}
	}
}

// Reap collects any children that have exited. When blocking is true it
// waits for one exit and returns; otherwise it polls with WNOHANG and returns
// immediately if nothing has changed. Exits of tracked background jobs
// are announced on w.
func (t *Table) Reap(blocking bool, w io.Writer) {
	options := unix.WNOHANG
	if blocking {
		options = 0
	}

	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, options, nil)
		if pid <= 0 || err != nil {
			return
		}

		t.mu.Lock()
		var wasBackground bool
		for _, j := range t.jobs {
			if j.PGID == pid {
				wasBackground = j.Background
			}
		}
		t.remove(pid)
		t.mu.Unlock()

		if wasBackground && w != nil {
			fmt.Fprintf(w, "[bg] process %d finished\n", pid)
		}

		if blocking {
			return
		}
	}
}

// Print writes one line per tracked job in "[pgid] state commandline"
// form, matching the shell's `jobs` builtin.
func (t *Table) Print(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		state := "Done"
		if j.Background {
			state = "Running"
		}
		fmt.Fprintf(w, "[%d] %s %s\n", j.PGID, state, j.CommandLine)
	}
}

// Len reports the number of currently tracked jobs.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}
