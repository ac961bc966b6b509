// Package patterns holds the ordered pattern and keyword tables the
// extractor and classifier consume. Every table is a priority list: the
// first entry that matches wins, so declaration order is part of the
// contract and must not be reordered.
package patterns

import "regexp"

// FieldPattern pairs a compiled expression with the layout variant it
// recognizes.
type FieldPattern struct {
	Expr    *regexp.Regexp
	Variant string
}

// Single fixed patterns for the labelled numeric fields.
var (
	// InvoiceCode matches "发票代码" followed by digits.
	InvoiceCode = regexp.MustCompile(`发票代码\s*[:：]\s*(\d+)`)

	// InvoiceNumber matches "发票号码" followed by digits.
	InvoiceNumber = regexp.MustCompile(`发票号码\s*[:：]\s*(\d+)`)
)

// DatePatterns lists the supported 开票日期 layouts, spaced variant first.
// Captured groups are (year, month, day).
var DatePatterns = []FieldPattern{
	{regexp.MustCompile(`开票日期\s*[:：]\s*(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`), "spaced"},
	{regexp.MustCompile(`开票日期\s*[:：]\s*(\d{4})年(\d{1,2})月(\d{1,2})日`), "compact"},
}

// Amount patterns, in strict priority order: the table-row layout is
// consulted before loose currency symbols.
var (
	// TableRowAmount matches a tax table row: amount, rate percent, tax.
	TableRowAmount = regexp.MustCompile(`(\d+\.\d{2})\s+(\d+)%\s+(\d+\.\d{2})`)

	// YuanAmount matches a RMB currency marker followed by a 2-decimal
	// number.
	YuanAmount = regexp.MustCompile(`[￥¥]\s*(\d+\.\d{2})`)
)

// NamePatterns lists the filename layouts a person name is resolved from,
// provider-specific layout first.
var NamePatterns = []FieldPattern{
	{regexp.MustCompile(`滴滴电子发票\d+[_-]\d+[_-]([\x{4e00}-\x{9fa5}]{2,4})\.pdf$`), "didi"},
	{regexp.MustCompile(`([\x{4e00}-\x{9fa5}]{2,4})\.pdf$`), "direct"},
}

// IdeographRun matches a run of 2 to 4 CJK ideographs anywhere in a string.
// Used as the name resolver's fallback.
var IdeographRun = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,4}`)

// CatchAllCategory is the bucket assigned when no keyword rule matches.
const CatchAllCategory = "其他发票"

// Category pairs a classification label with its trigger keywords.
type Category struct {
	Name     string
	Keywords []string
}

// Categories is the ordered classification table. Order encodes precedence:
// 地铁发票 must stay ahead of 高铁发票 so a subway receipt mentioning 铁路
// is not tagged as rail. The catch-all entry is last and has no keywords.
var Categories = []Category{
	{"地铁发票", []string{"地铁", "城市轨道", "轨道交通", "城市轨道交通服务", "地铁集团", "三号线"}},
	{"高铁发票", []string{"铁路", "无座", "硬座", "二等座", "高铁", "动车", "火车票"}},
	{"滴滴打车发票", []string{"客运服务", "客运服务费", "滴滴", "快车", "专车", "出租车"}},
	{"顺丰发票", []string{"收派服务", "收派服务费", "快递服务", "收派", "物流", "顺丰"}},
	{"通行费电子发票", []string{"通行费", "经营租赁", "高速公路", "ETC", "停车费"}},
	{"餐饮发票", []string{"餐饮", "饭店", "餐厅", "食品", "外卖"}},
	{"住宿发票", []string{"住宿", "酒店", "宾馆", "旅馆"}},
	{"办公用品发票", []string{"办公用品", "文具", "打印", "复印", "纸张"}},
	{CatchAllCategory, nil},
}

// CategoryNames returns the labels in table order, catch-all included.
func CategoryNames() []string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, c.Name)
	}
	return names
}
