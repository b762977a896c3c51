package mcpserver

// PipelineContract describes the pipeline semantics that LLM consumers
// must respect when driving leads through the board.
const PipelineContract = `# Raido Pipeline Contract

## Stages

- A lead occupies exactly one stage, stored as a plain stage name string.
- The active board shows the non-system, active stages in catalog order.
- ` + "`" + `Closed` + "`" + ` and ` + "`" + `Dead` + "`" + ` are terminal system stages. They never appear
  on the active board and can only be reached through the interactive
  confirmation workflow in the UI — the ` + "`" + `move_stage` + "`" + ` tool rejects them.
- A lead whose stage was deactivated or renamed still renders: the stored
  stage string is kept as a literal value and the board buckets the lead
  under a fallback column.

## Notes

- Notes are independent free-text records, newest first.
- Content must be non-empty after trimming whitespace.
- A note may carry an external call-recording URL; it is stored as an
  opaque reference.

## Schedules

- A schedule is a CALL or an APPOINTMENT with an ISO-8601 date.
- Persisted statuses: SCHEDULED, RESCHEDULED, COMPLETED, CANCELLED.
- MISSED is never stored. It is derived at read time: a SCHEDULED or
  RESCHEDULED item whose date has passed shows as MISSED.
- Completing a missed item is the normal remediation path.
- COMPLETED and CANCELLED are final; no further transitions.
- Rescheduling appends an audit line to the schedule notes; the prior
  text is never rewritten.
- Creating a schedule with a past date is allowed and immediately shows
  as MISSED — use it to record overdue follow-ups.
`
