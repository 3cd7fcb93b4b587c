package audit

// Action identifies the vault operation an entry records.
type Action string

const (
	UnknownAction Action = "unknown"
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionList    Action = "list"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRotate  Action = "rotate"
	ActionDenied  Action = "access-denied"
	ActionPurge   Action = "purge"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionList, ActionUpdate, ActionDelete, ActionRotate, ActionDenied, ActionPurge:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}

// Outcome records how the operation ended.
type Outcome string

const (
	UnknownOutcome Outcome = "unknown"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeDenied:
		return true
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}
