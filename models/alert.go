package models

// ProtectionAlert is one entry of the append-only audit trail kept under
// system.protection_alerts. An alert is recorded every time a locked field
// rejects a conflicting write.
type ProtectionAlert struct {
	ID            string `json:"id" bson:"id"`
	Field         string `json:"field" bson:"field"`
	StoredValue   string `json:"storedValue" bson:"storedValue"`
	IncomingValue string `json:"incomingValue" bson:"incomingValue"`
	Source        string `json:"source" bson:"source"`
	CreatedAt     string `json:"createdAt" bson:"createdAt"`
}

// The alert trail lives inside the generic document map so it survives JSON
// round trips through the storage tiers; these two helpers convert at the
// boundary.

func (a ProtectionAlert) toMap() map[string]interface{} {
	return map[string]interface{}{
		"id":            a.ID,
		"field":         a.Field,
		"storedValue":   a.StoredValue,
		"incomingValue": a.IncomingValue,
		"source":        a.Source,
		"createdAt":     a.CreatedAt,
	}
}

func alertFromMap(m map[string]interface{}) ProtectionAlert {
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	return ProtectionAlert{
		ID:            str("id"),
		Field:         str("field"),
		StoredValue:   str("storedValue"),
		IncomingValue: str("incomingValue"),
		Source:        str("source"),
		CreatedAt:     str("createdAt"),
	}
}
