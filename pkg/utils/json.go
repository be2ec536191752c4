package utils

import "encoding/json"

func Unmarshal[T any](data []byte) (*T, error) {
	var unm T
	err := json.Unmarshal(data, &unm)
	if err != nil {
		return nil, err
	}
	return &unm, nil
}

// MustMarshal is for reply envelopes of plain structs, strings and decimals,
// which always encode. On an encoding error it returns nil and the nats
// requester gets an empty reply.
func MustMarshal(v any) []byte {
	m, _ := json.Marshal(v)
	return m
}
