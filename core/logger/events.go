package logger

// LogEntry is one line of the audit log: a timestamp, the session it
// belongs to, and exactly one event payload.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros,omitempty"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart      *SessionStart      `json:"session_start,omitempty"`
	SessionEnd        *SessionEnd        `json:"session_end,omitempty"`
	LoginAttempt      *LoginAttempt      `json:"login_attempt,omitempty"`
	RunCommand        *RunCommand        `json:"run_command,omitempty"`
	HistoryReplay     *HistoryReplay     `json:"history_replay,omitempty"`
	HistoryCleared    *HistoryCleared    `json:"history_cleared,omitempty"`
	InvalidInvocation *InvalidInvocation `json:"invalid_invocation,omitempty"`
	LaunchError       *LaunchError       `json:"launch_error,omitempty"`
	TerminalUpdate    *TerminalUpdate    `json:"terminal_update,omitempty"`
}

// Event is one loggable occurrence. Implementations attach themselves
// to the entry envelope.
type Event interface {
	attach(le *LogEntry)
}

// SessionStart marks the beginning of an interpreter session.
type SessionStart struct {
	User       string `json:"user,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Host       string `json:"host,omitempty"`
	Term       string `json:"term,omitempty"`
	IsPty      bool   `json:"is_pty,omitempty"`
}

func (e *SessionStart) attach(le *LogEntry) { le.SessionStart = e }

// SessionEnd marks the orderly end of a session.
type SessionEnd struct{}

func (e *SessionEnd) attach(le *LogEntry) { le.SessionEnd = e }

// Values for LoginAttempt.Result.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// LoginAttempt records one authentication attempt in serve mode.
type LoginAttempt struct {
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Result     string `json:"result,omitempty"`
}

func (e *LoginAttempt) attach(le *LogEntry) { le.LoginAttempt = e }

// RunCommand records one dispatched command, builtin or external.
type RunCommand struct {
	Command []string `json:"command,omitempty"`
}

func (e *RunCommand) attach(le *LogEntry) { le.RunCommand = e }

// HistoryReplay records a history replay request that reached
// execution.
type HistoryReplay struct {
	Offset int    `json:"offset"`
	Line   string `json:"line,omitempty"`
}

func (e *HistoryReplay) attach(le *LogEntry) { le.HistoryReplay = e }

// HistoryCleared records a history -c.
type HistoryCleared struct{}

func (e *HistoryCleared) attach(le *LogEntry) { le.HistoryCleared = e }

// InvalidInvocation records input the interpreter could not parse.
type InvalidInvocation struct {
	Input string `json:"input,omitempty"`
	Error string `json:"error,omitempty"`
}

func (e *InvalidInvocation) attach(le *LogEntry) { le.InvalidInvocation = e }

// LaunchError records an external program that failed to start.
type LaunchError struct {
	Command []string `json:"command,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (e *LaunchError) attach(le *LogEntry) { le.LaunchError = e }

// TerminalUpdate records the terminal geometry reported by a session.
type TerminalUpdate struct {
	Term   string `json:"term,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	IsPty  bool   `json:"is_pty,omitempty"`
}

func (e *TerminalUpdate) attach(le *LogEntry) { le.TerminalUpdate = e }
