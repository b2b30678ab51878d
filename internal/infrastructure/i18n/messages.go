package i18n

// Message keys shared by the collection view, the API client and the console
const (
	KeyFetchFailed      = "fetch.failed"
	KeyStatsFailed      = "stats.failed"
	KeyCreateSuccess    = "create.success"
	KeyCreateFailed     = "create.failed"
	KeyUpdateSuccess    = "update.success"
	KeyUpdateFailed     = "update.failed"
	KeyDeleteSuccess    = "delete.success"
	KeyDeleteFailed     = "delete.failed"
	KeyDeleteNotAllowed = "delete.not_allowed"
	KeyValidationFailed = "validation.failed"
	KeyListEmpty        = "list.empty"
	KeyExportSuccess    = "export.success"
	KeyExportFailed     = "export.failed"
	KeyLoginSuccess     = "login.success"
	KeyLogoutSuccess    = "logout.success"
	KeyNetwork          = "error.network"
	KeyTimeout          = "error.timeout"
	KeyUnauthorized     = "error.unauthorized"
	KeyForbidden        = "error.forbidden"
	KeyNotFound         = "error.not_found"
	KeyRateLimited      = "error.rate_limited"
	KeyServer           = "error.server"
	KeyGeneric          = "error.generic"

	KeyPageFooter    = "console.page_footer"
	KeyStatsTotal    = "console.stats_total"
	KeyStatsAmount   = "console.stats_amount"
	KeyColumnStatus  = "console.column_status"
	KeyColumnCount   = "console.column_count"
	KeyColumnPercent = "console.column_percent"
	KeyExportPreview = "console.export_preview"
)

var vietnamese = map[string]string{
	KeyFetchFailed:      "Không thể tải dữ liệu",
	KeyStatsFailed:      "Không thể tải thống kê",
	KeyCreateSuccess:    "Tạo mới thành công",
	KeyCreateFailed:     "Không thể tạo mới",
	KeyUpdateSuccess:    "Cập nhật thành công",
	KeyUpdateFailed:     "Không thể cập nhật",
	KeyDeleteSuccess:    "Xóa thành công",
	KeyDeleteFailed:     "Không thể xóa",
	KeyDeleteNotAllowed: "Không thể xóa bản ghi ở trạng thái %s",
	KeyValidationFailed: "Vui lòng điền đầy đủ thông tin bắt buộc: %s",
	KeyListEmpty:        "Không có dữ liệu",
	KeyExportSuccess:    "Đã xuất %d dòng ra %s",
	KeyExportFailed:     "Xuất dữ liệu thất bại",
	KeyLoginSuccess:     "Đăng nhập thành công",
	KeyLogoutSuccess:    "Đã đăng xuất",
	KeyNetwork:          "Không có kết nối mạng, vui lòng kiểm tra lại",
	KeyTimeout:          "Yêu cầu quá thời gian chờ, vui lòng thử lại",
	KeyUnauthorized:     "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại",
	KeyForbidden:        "Bạn không có quyền thực hiện thao tác này",
	KeyNotFound:         "Không tìm thấy dữ liệu",
	KeyRateLimited:      "Quá nhiều yêu cầu, vui lòng thử lại sau",
	KeyServer:           "Lỗi máy chủ, vui lòng thử lại sau",
	KeyGeneric:          "Đã xảy ra lỗi, vui lòng thử lại",

	KeyPageFooter:    "Trang %d/%d, tổng %d bản ghi",
	KeyStatsTotal:    "Tổng số",
	KeyStatsAmount:   "Tổng giá trị",
	KeyColumnStatus:  "TRẠNG THÁI",
	KeyColumnCount:   "SỐ LƯỢNG",
	KeyColumnPercent: "TỶ LỆ",
	KeyExportPreview: "Xem trước %d/%d dòng",
}

var english = map[string]string{
	KeyFetchFailed:      "Could not load data",
	KeyStatsFailed:      "Could not load statistics",
	KeyCreateSuccess:    "Created successfully",
	KeyCreateFailed:     "Could not create record",
	KeyUpdateSuccess:    "Updated successfully",
	KeyUpdateFailed:     "Could not update record",
	KeyDeleteSuccess:    "Deleted successfully",
	KeyDeleteFailed:     "Could not delete record",
	KeyDeleteNotAllowed: "Cannot delete a record with status %s",
	KeyValidationFailed: "Please fill in the required fields: %s",
	KeyListEmpty:        "No data",
	KeyExportSuccess:    "Exported %d rows to %s",
	KeyExportFailed:     "Export failed",
	KeyLoginSuccess:     "Logged in",
	KeyLogoutSuccess:    "Logged out",
	KeyNetwork:          "No network connection, please check and retry",
	KeyTimeout:          "The request timed out, please retry",
	KeyUnauthorized:     "Your session has expired, please log in again",
	KeyForbidden:        "You are not allowed to perform this action",
	KeyNotFound:         "Data not found",
	KeyRateLimited:      "Too many requests, please try again later",
	KeyServer:           "Server error, please try again later",
	KeyGeneric:          "Something went wrong, please retry",

	KeyPageFooter:    "Page %d/%d, %d records total",
	KeyStatsTotal:    "Total",
	KeyStatsAmount:   "Total value",
	KeyColumnStatus:  "STATUS",
	KeyColumnCount:   "COUNT",
	KeyColumnPercent: "SHARE",
	KeyExportPreview: "Previewing %d of %d rows",
}
