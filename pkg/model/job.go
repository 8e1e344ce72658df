package model

import "time"

type JobType string

const (
	JobShell  JobType = "SHELL"  // run Spec.Command through the shell
	JobFile   JobType = "FILE"   // write Spec.Payload to Spec.Path
	JobDocker JobType = "DOCKER" // run Spec.Command inside Spec.Image
)

type JobState int

const (
	JobPending   JobState = iota // waiting for placement
	JobScheduled                 // bound to a node, not yet running
	JobRunning
	JobSucceeded
	JobFailed
)

// Terminal reports whether the state will never change again.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Placement pins a job to one specific node. An empty TargetAddress
// leaves the choice to the scheduler's resource-aware placement.
type Placement struct {
	TargetAddress string `json:"target_address,omitempty"`
}

type JobSpec struct {
	Command string   `json:"command,omitempty"` // SHELL/DOCKER
	Path    string   `json:"path,omitempty"`    // FILE: absolute destination path
	Payload []byte   `json:"payload,omitempty"` // FILE: full file content
	Image   string   `json:"image,omitempty"`   // DOCKER
	Env     []string `json:"env,omitempty"`
}

type JobStatus struct {
	State       JobState  `json:"state"`
	NodeAddress string    `json:"node_address,omitempty"` // where it was bound
	ExitCode    int       `json:"exit_code"`
	Error       string    `json:"error,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type Job struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type JobType `json:"type"`

	Spec JobSpec `json:"spec"`

	// Placement and ResReq drive the scheduler: a targeted job goes to
	// exactly its target, an untargeted one to any node whose free
	// resources cover ResReq.
	Placement Placement `json:"placement"`
	ResReq    Resources `json:"res_req"`

	Status JobStatus `json:"status"`
}

// Clone returns a deep copy safe to mutate independently, sharing only
// the payload bytes (written, never modified, by the remote side).
func (j *Job) Clone() *Job {
	out := *j
	if j.Spec.Env != nil {
		out.Spec.Env = append([]string(nil), j.Spec.Env...)
	}
	if j.ResReq.Custom != nil {
		out.ResReq.Custom = make(map[string]float64, len(j.ResReq.Custom))
		for name, qty := range j.ResReq.Custom {
			out.ResReq.Custom[name] = qty
		}
	}
	return &out
}

// Result is the resolved outcome of one submitted job.
type Result struct {
	JobID       string `json:"job_id"`
	NodeAddress string `json:"node_address"`
	ExitCode    int    `json:"exit_code"`
	Output      string `json:"output,omitempty"`
}
