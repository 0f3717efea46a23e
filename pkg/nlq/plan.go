package nlq

import (
	"encoding/json"
	"fmt"
)

// ResponseKind tells the executor how to run and present a statement.
type ResponseKind string

const (
	KindSelect ResponseKind = "select"
	KindCount  ResponseKind = "count"
	KindUpdate ResponseKind = "update"
	KindDelete ResponseKind = "delete"
	KindInsert ResponseKind = "insert"
)

// Mutating reports whether statements of this kind change rows.
func (k ResponseKind) Mutating() bool {
	return k == KindUpdate || k == KindDelete || k == KindInsert
}

// Valid reports whether k is a known kind.
func (k ResponseKind) Valid() bool {
	switch k {
	case KindSelect, KindCount, KindUpdate, KindDelete, KindInsert:
		return true
	}
	return false
}

// Intent is the classification of a single turn.
type Intent int

const (
	IntentChat Intent = iota
	IntentAsk
	IntentCount
	IntentSelect
	IntentBooleanCheck
	IntentInsert
	IntentUpdate
	IntentDelete
)

func (i Intent) String() string {
	switch i {
	case IntentChat:
		return "chat"
	case IntentAsk:
		return "ask"
	case IntentCount:
		return "count"
	case IntentSelect:
		return "select"
	case IntentBooleanCheck:
		return "boolean_check"
	case IntentInsert:
		return "insert"
	case IntentUpdate:
		return "update"
	case IntentDelete:
		return "delete"
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// Plan is the outcome of one turn: *ChatPlan, *AskPlan or *SQLPlan.
type Plan interface {
	isPlan()
}

// ChatPlan is a plain reply with nothing to execute.
type ChatPlan struct {
	Message string
}

// AskPlan asks the user a question and leaves Pending for the next turn.
type AskPlan struct {
	Message string
	Pending Pending
}

// SQLPlan is a validated statement for the executor.
type SQLPlan struct {
	Statement string
	Kind      ResponseKind
	// Preamble is the one-line explanation shown above the result.
	Preamble string

	confirmed bool
}

// Confirmed reports whether the user approved this statement on a confirmation turn.
// Mutating statements are only handed out confirmed.
func (p *SQLPlan) Confirmed() bool { return p.confirmed }

func (*ChatPlan) isPlan() {}
func (*AskPlan) isPlan()  {}
func (*SQLPlan) isPlan()  {}

// Pending is the interaction a conversation is waiting on.
type Pending interface {
	isPending()
	PendingKind() PendingKind
}

// PendingKind names a Pending variant on the wire.
type PendingKind string

const (
	PendingCountDimension          PendingKind = "count_dimension"
	PendingSelectSubject           PendingKind = "select_subject"
	PendingDestructiveConfirmation PendingKind = "destructive_confirmation"
)

// AwaitingCountDimension waits for the dimension of a count.
type AwaitingCountDimension struct{}

// AwaitingSelectSubject waits for the student to look up.
type AwaitingSelectSubject struct{}

// AwaitingDestructiveConfirmation holds a mutating statement until the user approves it.
type AwaitingDestructiveConfirmation struct {
	Statement string
	Kind      ResponseKind
}

func (AwaitingCountDimension) isPending()          {}
func (AwaitingSelectSubject) isPending()           {}
func (AwaitingDestructiveConfirmation) isPending() {}

func (AwaitingCountDimension) PendingKind() PendingKind { return PendingCountDimension }
func (AwaitingSelectSubject) PendingKind() PendingKind  { return PendingSelectSubject }
func (AwaitingDestructiveConfirmation) PendingKind() PendingKind {
	return PendingDestructiveConfirmation
}

// NextPending returns the pending state a plan leaves behind, nil for none.
func NextPending(plan Plan) Pending {
	if ask, ok := plan.(*AskPlan); ok {
		return ask.Pending
	}
	return nil
}

// PendingRecord is the storable form of a Pending.
type PendingRecord struct {
	Kind      PendingKind  `json:"kind" bson:"kind"`
	Statement string       `json:"statement,omitempty" bson:"statement,omitempty"`
	Response  ResponseKind `json:"response_kind,omitempty" bson:"response_kind,omitempty"`
}

// ToRecord converts a Pending for storage. A nil Pending gives a nil record.
func ToRecord(p Pending) *PendingRecord {
	switch v := p.(type) {
	case nil:
		return nil
	case AwaitingCountDimension:
		return &PendingRecord{Kind: PendingCountDimension}
	case AwaitingSelectSubject:
		return &PendingRecord{Kind: PendingSelectSubject}
	case AwaitingDestructiveConfirmation:
		return &PendingRecord{Kind: PendingDestructiveConfirmation, Statement: v.Statement, Response: v.Kind}
	}
	return nil
}

// FromRecord is the inverse of ToRecord.
func FromRecord(r *PendingRecord) (Pending, error) {
	if r == nil {
		return nil, nil
	}
	switch r.Kind {
	case PendingCountDimension:
		return AwaitingCountDimension{}, nil
	case PendingSelectSubject:
		return AwaitingSelectSubject{}, nil
	case PendingDestructiveConfirmation:
		if r.Statement == "" || !r.Response.Mutating() {
			return nil, fmt.Errorf("invalid destructive confirmation record")
		}
		return AwaitingDestructiveConfirmation{Statement: r.Statement, Kind: r.Response}, nil
	}
	return nil, fmt.Errorf("unknown pending kind %q", r.Kind)
}

// EncodePending marshals a Pending to JSON, "null" for none.
func EncodePending(p Pending) ([]byte, error) {
	return json.Marshal(ToRecord(p))
}

// DecodePending unmarshals the output of EncodePending.
func DecodePending(data []byte) (Pending, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var r *PendingRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode pending: %w", err)
	}
	return FromRecord(r)
}

// Turn is one message of the rolling conversation window.
type Turn struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
