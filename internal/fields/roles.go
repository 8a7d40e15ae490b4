// Package fields maps spreadsheet columns to the canonical semantic
// roles the analysis engine works with. Detection is heuristic: ranked
// keyword lists first, then content-shape checks on sampled values.
package fields

// Role is a canonical column meaning.
type Role string

const (
	RoleProduct  Role = "product"
	RoleCustomer Role = "customer"
	RoleRegion   Role = "region"
	RoleQuantity Role = "quantity"
	RoleProfit   Role = "profit"
	RoleAmount   Role = "amount"

	RoleCost        Role = "cost"
	RoleSeaFreight  Role = "sea_freight"
	RoleLandFreight Role = "land_freight"
	RoleAgencyFee   Role = "agency_fee"

	RoleUnitPrice Role = "unit_price"
	RoleCategory  Role = "category"

	// RoleUnknown marks a column no rule matched.
	RoleUnknown Role = "unknown"
)

// Map associates detected roles with original column names.
type Map map[Role]string

// CostRoles are the roles summed into total cost, in composition order.
var CostRoles = []Role{RoleCost, RoleSeaFreight, RoleLandFreight, RoleAgencyFee}

// textRoles can never be satisfied by a numeric column.
var textRoles = map[Role]bool{
	RoleProduct:  true,
	RoleCustomer: true,
	RoleRegion:   true,
	RoleCategory: true,
}

// numericRoles expect columns whose sampled values parse as numbers.
var numericRoles = map[Role]bool{
	RoleQuantity:    true,
	RoleProfit:      true,
	RoleAmount:      true,
	RoleCost:        true,
	RoleSeaFreight:  true,
	RoleLandFreight: true,
	RoleAgencyFee:   true,
	RoleUnitPrice:   true,
}

// roleOrder fixes the matching order across roles so detection stays
// deterministic when several roles could claim one column.
var roleOrder = []Role{
	RoleProduct, RoleCustomer, RoleRegion,
	RoleQuantity, RoleProfit, RoleAmount,
	RoleCost, RoleSeaFreight, RoleLandFreight, RoleAgencyFee,
	RoleUnitPrice, RoleCategory,
}

// Aliases returns the keyword list per role, ordered by priority: an
// earlier alias wins when two columns compete for the same role.
func Aliases() map[Role][]string {
	return map[Role][]string{
		RoleProduct:  {"SKU", "物料名称", "产品名称", "存货名称", "物料", "单品", "产品", "商品", "货品", "品名", "物料编码", "产品编码", "商品名称", "货物名称", "品种", "产品型号", "型号", "规格"},
		RoleCustomer: {"客户名称", "客户", "客户全称", "客户简称", "购买方", "买方", "采购方", "客户代码", "客户编码", "客户ID", "买家", "收货方", "收货人", "终端客户", "最终客户"},
		RoleRegion:   {"地区", "区域", "省份", "地域", "区域名称", "省市", "城市", "省", "市", "地区名称", "销售区域", "配送区域"},
		RoleQuantity: {"数量", "销量", "销售数量", "出货量", "发货量", "重量", "净重", "毛重", "吨数", "件数", "箱数", "包装数量", "发货数量", "出库数量"},
		RoleProfit:   {"毛利", "利润", "毛利润", "毛利额", "利润额", "盈利", "毛利金额", "利润金额", "毛利贡献", "利润贡献"},
		RoleAmount:   {"金额", "销售额", "含税金额", "销售金额", "总金额", "成交金额", "交易金额", "订单金额", "合同金额", "开票金额", "收入", "营业额"},

		RoleCost:        {"成本", "成本价", "采购成本", "进货成本", "单位成本", "总成本", "成本金额"},
		RoleSeaFreight:  {"海运费", "海运成本", "海运费用", "海运运费"},
		RoleLandFreight: {"陆运费", "陆运成本", "陆运费用", "运费", "运输费", "物流费", "配送费"},
		RoleAgencyFee:   {"代办费", "代理费", "服务费", "手续费", "佣金", "促销管理费", "仓储费"},

		RoleUnitPrice: {"单价", "价格", "售价", "单位价格", "含税单价", "不含税单价"},
		RoleCategory:  {"物料基本分类", "分类", "类别", "产品分类", "商品分类", "品类", "产品类型", "商品类型"},
	}
}

// loosePatterns are single-keyword fallbacks tried only after whole
// alias matching fails. Order matters: earlier roles are checked first
// so e.g. "含税单价" resolves before the amount patterns can claim it.
var loosePatterns = []struct {
	role     Role
	patterns []string
}{
	{RoleUnitPrice, []string{"单价", "价格"}},
	{RoleProduct, []string{"品", "料", "sku", "SKU", "物料", "产品", "商品", "货品"}},
	{RoleCustomer, []string{"客", "户", "买", "购", "收货"}},
	{RoleRegion, []string{"地", "区", "省", "市", "域"}},
	{RoleQuantity, []string{"量", "数", "重", "吨", "件", "箱"}},
	{RoleProfit, []string{"利", "润", "盈"}},
	{RoleAmount, []string{"额", "金", "收入", "营业"}},
	{RoleCost, []string{"本", "成本"}},
}

// RequiredRoles lists the roles an analysis type cannot run without.
func RequiredRoles(analysisType string) []Role {
	switch analysisType {
	case "product":
		return []Role{RoleProduct, RoleQuantity, RoleProfit}
	case "customer":
		return []Role{RoleCustomer, RoleAmount, RoleProfit}
	case "region":
		return []Role{RoleRegion, RoleAmount, RoleProfit}
	default:
		return nil
	}
}

// GroupRole returns the entity dimension for an analysis type.
func GroupRole(analysisType string) Role {
	switch analysisType {
	case "product":
		return RoleProduct
	case "customer":
		return RoleCustomer
	case "region":
		return RoleRegion
	default:
		return RoleUnknown
	}
}

// SuggestedKeywords returns the top alias suggestions for a role, used
// in missing-field error details.
func SuggestedKeywords(role Role, n int) []string {
	aliases := Aliases()[role]
	if len(aliases) > n {
		aliases = aliases[:n]
	}
	return aliases
}
