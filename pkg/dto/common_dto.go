package dto

// ListResponse wraps a projection list.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func NewListResponse[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Total: len(data)}
}

// BloodType joins a group and rhesus sign, e.g. "AB" and "-" become "AB-".
func BloodType(group, rhesus string) string {
	return group + rhesus
}
