package scraper

import "fmt"

// Selectors for the registration database's search page. The site is a
// classic server-rendered grid: a fixed 20-row result table, a jbox modal
// overlay for details, and a <ul> pager whose li.active carries the
// current page number.
const (
	searchInput  = "#searchForm > div.search_table > table > tbody > tr:nth-child(3) > td.t1 > input[type=text]"
	submitButton = "#btnSubmit"

	// The detail overlay renders inside an iframe managed by jbox.
	overlayFrame = "#jbox-iframe"
	overlayClose = "#jbox > table > tbody > tr:nth-child(2) > td:nth-child(2) > div > a"

	paginationRegion    = "body > div.web_ser_body_right_main_search > div"
	paginationLinks     = paginationRegion + " a"
	activePageIndicator = paginationRegion + " > ul > li.active > a"

	// nextPagePattern matches the "next page" link label.
	nextPagePattern = "下一页"
)

// rowLinkSelector addresses the detail link of one result row. The grid's
// first tr is the header, so data rows live at nth-child 2..21.
func rowLinkSelector(row int) string {
	return fmt.Sprintf("#tab > tbody > tr:nth-child(%d) > td.t3 > span > a", row)
}

// Overlay field labels as they appear in the detail table. The colons are
// full-width; matching is done on the label cell's own text.
const (
	labelRegisteredNumber = "Registered number："
	labelFirstProve       = "FirstProve："
	labelPeriod           = "Period："
	labelProductName      = "ProductName："
	labelToxicity         = "Toxicity："
	labelFormulation      = "Formulation："
	labelHolder           = "Registration certificate holder："
	labelRemark           = "Remark："
)
