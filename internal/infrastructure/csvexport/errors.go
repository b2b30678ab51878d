package csvexport

import "github.com/erp/posconsole/internal/domain/shared"

// Export file errors
var (
	ErrEmptyFile       = shared.NewDomainError("EXPORT_EMPTY_FILE", "Export file is empty")
	ErrInvalidEncoding = shared.NewDomainError("EXPORT_INVALID_ENCODING", "Export file is not valid UTF-8")
	ErrMissingHeader   = shared.NewDomainError("EXPORT_MISSING_HEADER", "Export file has no header row")
	ErrFileExists      = shared.NewDomainError("EXPORT_FILE_EXISTS", "Output file already exists")
)
