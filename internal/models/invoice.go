package models

import "fmt"

// Status and default sentinels. Status is the only success discriminant
// downstream consumers may branch on.
const (
	StatusSuccess = "成功"

	// UnknownName is returned when no person name can be resolved.
	UnknownName = "未知"

	// NotSelected is the default for enrichment fields the caller did not
	// supply. The persistence sink stores this sentinel, never an absent
	// column.
	NotSelected = "未选择"
)

// FailureStatus builds the failure marker carrying the underlying error.
func FailureStatus(err error) string {
	return fmt.Sprintf("失败: %v", err)
}

// ExtractionRecord is the structured result of parsing one invoice
// document's first page. Every field is always present: missed patterns
// leave the empty-string / zero defaults rather than omitting keys.
type ExtractionRecord struct {
	Filename      string  `json:"filename"`       // 文件名
	PersonName    string  `json:"person_name"`    // 姓名
	InvoiceCode   string  `json:"invoice_code"`   // 发票代码
	InvoiceNumber string  `json:"invoice_number"` // 发票号码
	InvoiceDate   string  `json:"invoice_date"`   // 开票日期, YYYY/MM/DD
	Amount        float64 `json:"amount"`         // 金额
	TaxRate       string  `json:"tax_rate"`       // 税率, "{N}%"
	TaxAmount     float64 `json:"tax_amount"`     // 税额
	TotalAmount   float64 `json:"total_amount"`   // 价税合计, always Amount+TaxAmount
	Status        string  `json:"status"`         // 状态
	ExtractedAt   string  `json:"extracted_at"`   // 提取时间

	// Enrichment supplied by the caller before persistence, not by the
	// extractor.
	AuditMonth   string `json:"audit_month"`   // 费用所属月份(审核月份)
	BusinessUnit string `json:"business_unit"` // 事业部
	Project      string `json:"project"`       // 大项目
}

// Succeeded reports whether extraction completed without a captured failure.
func (r *ExtractionRecord) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Invoice is a persisted extraction record row.
type Invoice struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	ExtractionRecord
	CreatedAt string `json:"created_at"`
}

// Statistics summarizes a user's processed invoices.
type Statistics struct {
	TotalFiles   int64   `json:"total_files"`   // 总文件数
	SuccessFiles int64   `json:"success_files"` // 成功数
	FailedFiles  int64   `json:"failed_files"`  // 失败数
	TotalAmount  float64 `json:"total_amount"`  // 总金额
	TotalTax     float64 `json:"total_tax"`     // 总税额
	GrandTotal   float64 `json:"grand_total"`   // 总价税合计
	SuccessRate  float64 `json:"success_rate"`  // 成功率
}
