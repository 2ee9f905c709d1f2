package transport

// CorrectLocationRequest is the admin payload overwriting a location's code.
type CorrectLocationRequest struct {
	Code    string `json:"code" validate:"required,len=3,alpha"`
	Country string `json:"country,omitempty" validate:"omitempty,len=2,alpha"`
}

// LocationResponse mirrors one location record.
type LocationResponse struct {
	RawName        string `json:"rawName"`
	NormalizedName string `json:"normalizedName"`
	Code           string `json:"code"`
	Country        string `json:"country,omitempty"`
	Provenance     string `json:"provenance,omitempty"`
}
