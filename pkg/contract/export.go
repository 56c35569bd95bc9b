package contract

import "fmt"

// ExportRequest asks the backend to materialise a record set as CSV. The
// resource travels in the URL path, the rest in the body.
type ExportRequest struct {
	Resource ResourceKind
	Data     RecordSet
	ApplyMD5 bool
}

// ExportBody is the JSON body of POST /api/export/{resource}.
type ExportBody struct {
	Data     RecordSet `json:"data"`
	ApplyMD5 bool      `json:"apply_md5"`
}

// Body returns the wire body for r.
func (r ExportRequest) Body() ExportBody {
	data := r.Data
	if data == nil {
		data = RecordSet{}
	}
	return ExportBody{Data: data, ApplyMD5: r.ApplyMD5}
}

// ExportResponse reports where the backend wrote the CSV file.
type ExportResponse struct {
	Success     bool   `json:"success"`
	Filepath    string `json:"filepath,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ExportFileName is the deterministic local file name for an exported
// record set.
func ExportFileName(kind ResourceKind) string {
	return fmt.Sprintf("%s_synthetic.csv", kind)
}
