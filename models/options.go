package models

// Fixed option sets for every enum field. Submitted values must match one of
// these strings exactly; anything else is rejected, never coerced. The sets
// are also published on GET /api/options so the form client stays in
// lockstep with the validator.

// Salary bounds: salary_months is months-of-pay received per year, half-month
// granularity.
const (
	SalaryMonthsMin  = 0.0
	SalaryMonthsMax  = 18.0
	SalaryMonthsStep = 0.5
)

// MaxFieldLength bounds every submitted string field.
const MaxFieldLength = 200

var IndustryOptions = []string{
	"互联网/IT",
	"制造业",
	"建筑/地产",
	"金融",
	"教育/培训",
	"医疗/医药",
	"餐饮/零售/服务业",
	"公务员/体制内 (岸上)",
	"国企/央企",
	"自由职业/个体",
	"其他",
}

var PersonalIncomeOptions = []string{
	"明显上涨 (涨幅 ≥ 10%)",
	"基本持平 (波动 < 10%)",
	"明显下降 (降幅 ≥ 10%)",
	"收入归零 (失业/停薪)",
}

var PersonalArrearsOptions = []string{
	"从未欠薪，按时发放",
	"偶尔延迟，最终补发",
	"经常延迟发放",
	"被拖欠数月未发",
	"公司已无力支付",
}

var FriendsStatusOptions = []string{
	"普遍在涨薪/跳槽，行情不错",
	"多数稳定，少数波动",
	"普遍降薪/被裁，行情很差",
	"不清楚/很少交流",
}

var FriendsArrearsPerceptionOptions = []string{
	"几乎没听说过 (罕见)",
	"偶尔听说 (个别公司)",
	"经常听说 (比较普遍)",
	"身边大面积欠薪",
}

var WelfareCutOptions = []string{
	"没有任何福利缩水/维持原状",
	"取消/减少年终奖",
	"取消餐补/交通补贴",
	"降低公积金缴纳比例",
	"取消团建/福利活动",
	"变相降薪 (调岗/调薪)",
	"其他福利缩水",
}

// OptionSets groups every enum option list for the public options endpoint.
type OptionSets struct {
	Industry                 []string `json:"industry"`
	PersonalIncome           []string `json:"personal_income"`
	PersonalArrears          []string `json:"personal_arrears"`
	FriendsStatus            []string `json:"friends_status"`
	FriendsArrearsPerception []string `json:"friends_arrears_perception"`
	WelfareCut               []string `json:"welfare_cut"`
}

// AllOptions returns the current option sets.
func AllOptions() OptionSets {
	return OptionSets{
		Industry:                 IndustryOptions,
		PersonalIncome:           PersonalIncomeOptions,
		PersonalArrears:          PersonalArrearsOptions,
		FriendsStatus:            FriendsStatusOptions,
		FriendsArrearsPerception: FriendsArrearsPerceptionOptions,
		WelfareCut:               WelfareCutOptions,
	}
}
