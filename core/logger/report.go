package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Sessions          SessionReport       `json:"session_report"`
	LoginAttempt      LoginAttemptReport  `json:"login_attempt_report"`
	RunCommand        RunCommandReport    `json:"run_command_report"`
	HistoryReplay     HistoryReplayReport `json:"history_replay_report"`
	InvalidInvocation *PathCounter        `json:"invalid_invocation_report,omitempty"`
	LaunchError       *PathCounter        `json:"launch_error_report,omitempty"`
}

// NewReport creates an empty report ready for Update calls.
func NewReport() *Report {
	return &Report{
		InvalidInvocation: NewPathCounter("input", "error"),
		LaunchError:       NewPathCounter("command", "error"),
	}
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.SessionStart != nil:
		r.Sessions.update(le.SessionStart)
	case le.LoginAttempt != nil:
		r.LoginAttempt.update(le.LoginAttempt)
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
	case le.HistoryReplay != nil:
		r.HistoryReplay.update(le.HistoryReplay)
	case le.HistoryCleared != nil:
		r.HistoryReplay.Cleared++
	case le.InvalidInvocation != nil:
		r.InvalidInvocation.Increment(le.InvalidInvocation.Input, le.InvalidInvocation.Error)
	case le.LaunchError != nil:
		command := ""
		if len(le.LaunchError.Command) > 0 {
			command = le.LaunchError.Command[0]
		}
		r.LaunchError.Increment(command, le.LaunchError.Error)
	case le.SessionEnd != nil, le.TerminalUpdate != nil:
		// Ignore
	default:
		r.InvalidEntries.Increment("unknown")
	}
}

// SessionReport summarizes who connected and from where.
type SessionReport struct {
	Count       int        `json:"count"`
	Users       StrCounter `json:"users"`
	RemoteAddrs StrCounter `json:"remote_addrs"`
}

func (r *SessionReport) update(s *SessionStart) {
	r.Count++
	if s.User != "" {
		r.Users.Increment(s.User)
	}
	if s.RemoteAddr != "" {
		r.RemoteAddrs.Increment(s.RemoteAddr)
	}
}

// LoginAttemptReport summarizes serve-mode authentication attempts.
type LoginAttemptReport struct {
	// List of passwords and their counts.
	Passwords StrCounter `json:"passwords"`
	// List of usernames and their counts.
	Usernames StrCounter `json:"usernames"`
	// List of login attempt results and their counts.
	Results StrCounter `json:"results"`
}

func (r *LoginAttemptReport) update(la *LoginAttempt) {
	r.Passwords.Increment(la.Password)
	r.Usernames.Increment(la.Username)
	r.Results.Increment(la.Result)
}

// RunCommandReport summarizes every dispatched command.
type RunCommandReport struct {
	// Name of the command (argv[0]).
	CommandNames StrCounter `json:"command_names"`
	// Full command lines and their counts.
	CommandLines StrCounter `json:"command_lines"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}
	r.CommandLines.Increment(strings.Join(rc.Command, " "))
}

// HistoryReplayReport summarizes history replays and clears.
type HistoryReplayReport struct {
	Count   int        `json:"count"`
	Cleared int        `json:"cleared"`
	Lines   StrCounter `json:"lines"`
}

func (r *HistoryReplayReport) update(hr *HistoryReplay) {
	r.Count++
	r.Lines.Increment(hr.Line)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

// NewPathCounter creates a counter over tuples with the named columns.
func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of string tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements a custom JSON marshaler ordered by count.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	if err := json.Unmarshal([]byte(key), &out); err != nil {
		panic(fmt.Sprintf("invalid path counter key %q: %v", key, err))
	}
	return
}
