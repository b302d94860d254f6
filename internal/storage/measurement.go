package storage

import "encoding/json"

// Measurement is one employee's measurement record under an order. The tailor
// sheet carries an open-ended set of garment fields (apron, shirt, trousers
// and so on) that differ per company; those live in Extra and are flattened
// into the JSON object so the wire shape stays a single flat record.
type Measurement struct {
	ID           string `json:"id"`
	OrderID      string `json:"orderId"`
	CompanyID    string `json:"companyId"`
	EmpID        string `json:"empId"`
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`

	CurrentPhaseID    string         `json:"currentPhaseId,omitempty"`
	CompletedPhaseIDs []string       `json:"completedPhaseIds,omitempty"`
	SkippedPhases     []SkippedPhase `json:"skippedPhases,omitempty"`

	// Deprecated, replaced by CurrentPhaseID.
	State string `json:"state,omitempty"`

	Extra map[string]any `json:"-"`
}

// measurementAlias avoids recursing into the custom JSON methods.
type measurementAlias Measurement

var measurementKnownKeys = map[string]bool{
	"id": true, "orderId": true, "companyId": true, "empId": true,
	"employeeName": true, "department": true, "currentPhaseId": true,
	"completedPhaseIds": true, "skippedPhases": true, "state": true,
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(measurementAlias(m))
	if err != nil {
		return nil, err
	}

	if len(m.Extra) == 0 {
		return base, nil
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(base, &flat); err != nil {
		return nil, err
	}

	for k, v := range m.Extra {
		if measurementKnownKeys[k] {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		flat[k] = raw
	}

	return json.Marshal(flat)
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	var alias measurementAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	*m = Measurement(alias)
	for k, raw := range flat {
		if measurementKnownKeys[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		m.Extra[k] = v
	}

	return nil
}
