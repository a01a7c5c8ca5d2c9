package dictionary

import "mercator-hq/nlpolicy/pkg/rule"

// numberWords are written-out small numbers replaced with digits.
var numberWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"واحد": "1", "اثنين": "2", "اثنان": "2", "ثلاث": "3", "ثلاثة": "3", "ثلاثه": "3",
	"أربع": "4", "أربعة": "4", "اربعة": "4", "خمس": "5", "خمسة": "5", "خمسه": "5",
	"ست": "6", "ستة": "6", "سبع": "7", "سبعة": "7", "ثمان": "8", "ثمانية": "8",
	"تسع": "9", "تسعة": "9", "عشر": "10", "عشرة": "10",
}

// actionCues mark a nearby number as an action magnitude.
var actionCues = []string{
	"reward", "bonus", "deduct", "penalty", "add", "give", "grant", "fine", "incentive", "allowance",
	"riyal", "sar",
	"مكافأة", "مكافاة", "مكافئة", "بونص", "خصم", "غرامة", "جزاء", "إضافة", "اضافة", "يضاف", "تضاف",
	"ياخد", "يأخذ", "ياخذ", "يعطى", "حافز", "علاوة", "بدل", "يصرف", "ريال",
}

// conditionCues mark a nearby number as a condition magnitude.
var conditionCues = []string{
	"salary", "absence", "absent", "late", "warning", "violation", "custody", "tenure",
	"day", "minute", "month", "year", "hour",
	"greater", "more", "less", "above", "below", "under", "exceed", "beyond", "than", "least", "most", "equal",
	"راتب", "غياب", "غاب", "تأخير", "تأخر", "تاخير", "تاخر", "انذار", "إنذار", "مخالفة", "مخالفات",
	"عهدة", "عهده", "يوم", "أيام", "ايام", "دقيقة", "دقائق", "شهر", "أشهر", "اشهر", "شهور",
	"سنة", "سنوات", "خدمة", "ساعة", "ساعات",
	"أكثر", "اكثر", "أكبر", "اكبر", "أقل", "اقل", "فوق", "تحت", "يتجاوز", "تجاوز",
}

// connectives signal a conditional policy.
var connectives = []string{"if", "when", "whenever", "لو", "إذا", "اذا", "عند", "عندما", "حال"}

type fieldEntry struct {
	terms       []string
	requires    []string
	path        string
	categorical bool
}

// fieldDictionary is ordered: on equal distance the earlier entry wins.
var fieldDictionary = []fieldEntry{
	{terms: []string{"basic salary", "الراتب الأساسي", "الراتب الاساسي", "راتب أساسي", "راتب اساسي"}, path: "contract.basicSalary"},
	{terms: []string{"total salary", "gross salary", "إجمالي الراتب", "اجمالي الراتب", "الراتب الإجمالي"}, path: "contract.totalSalary"},
	{terms: []string{"salary", "راتب"}, path: "contract.basicSalary"},
	{terms: lateTerms, requires: []string{"minute", "دقيقة", "دقائق"}, path: "attendance.currentPeriod.lateMinutes"},
	{terms: lateTerms, requires: []string{"day", "times", "يوم", "أيام", "ايام", "مرة", "مرات"}, path: "attendance.currentPeriod.lateDays"},
	{terms: lateTerms, path: "attendance.currentPeriod.lateMinutes"},
	{terms: []string{"absence", "absent", "غياب", "غاب", "غائب"}, path: "attendance.currentPeriod.absentDays"},
	{terms: []string{"overtime", "إضافي", "اضافي"}, path: "attendance.currentPeriod.overtimeHours"},
	{terms: []string{"attendance", "حضور"}, path: "attendance.currentPeriod.attendancePercentage"},
	{terms: []string{"sick", "مرضي"}, path: "leaves.currentMonth.sickDays"},
	{terms: []string{"leave balance", "annual leave", "رصيد"}, path: "leaves.balance.annual"},
	{terms: []string{"warning", "انذار", "إنذار"}, path: "disciplinary.activeWarnings", categorical: true},
	{terms: []string{"violation", "مخالفة", "مخالفات"}, path: "disciplinary.activeCases", categorical: true},
	{terms: []string{"custody", "عهدة", "عهده"}, path: "custody.active", categorical: true},
	{terms: tenureTerms, requires: []string{"year", "سنة", "سنوات"}, path: "employee.tenure.years"},
	{terms: tenureTerms, path: "employee.tenure.months"},
	{terms: []string{"rating", "تقييم"}, path: "performance.lastRating"},
	{terms: []string{"target", "تارجت", "الهدف"}, path: "performance.targetAchievement"},
}

var (
	lateTerms   = []string{"late", "تأخير", "تأخر", "تاخير", "تاخر", "متأخر"}
	tenureTerms = []string{"tenure", "service", "خدمة", "خدمه"}
)

// salaryBaseMarkers precede a salary word that names an action base rather
// than a condition ("deduct 10% from salary").
var salaryBaseMarkers = []string{"of", "from", "من"}

type operatorEntry struct {
	terms []string
	op    rule.Operator
}

// operatorDictionary lists multi-word terms before the single words they contain.
var operatorDictionary = []operatorEntry{
	{[]string{"at least", "على الأقل", "على الاقل", "لا يقل"}, rule.OpGreaterThanOrEqual},
	{[]string{"at most", "على الأكثر", "على الاكثر", "لا يزيد"}, rule.OpLessThanOrEqual},
	{[]string{"greater", "more", "above", "exceed", "beyond", "أكثر", "اكثر", "أكبر", "اكبر", "فوق", "يتجاوز", "تجاوز"}, rule.OpGreaterThan},
	{[]string{"less", "under", "below", "before", "أقل", "اقل", "تحت", "قبل"}, rule.OpLessThan},
	{[]string{"equals", "equal", "exactly", "يساوي"}, rule.OpEquals},
	{[]string{"between", "within", "بين", "خلال"}, rule.OpGreaterThanOrEqual},
}

type actionEntry struct {
	terms []string
	typ   rule.ActionType
}

var actionDictionary = []actionEntry{
	{[]string{"alert hr", "notify hr", "تنبيه الموارد"}, rule.ActionAlertHR},
	{[]string{"deduct", "penalty", "fine", "خصم", "غرامة", "جزاء"}, rule.ActionDeductFromPayroll},
	{[]string{"reward", "bonus", "add", "give", "grant", "incentive", "allowance",
		"مكافأة", "مكافاة", "مكافئة", "بونص", "إضافة", "اضافة", "يضاف", "تضاف", "ياخد", "يأخذ", "ياخذ", "يعطى", "حافز", "علاوة", "بدل", "يصرف"}, rule.ActionAddToPayroll},
	{[]string{"notify", "notification", "alert", "إشعار", "اشعار", "تنبيه"}, rule.ActionSendNotification},
}

var (
	percentMarkers = []string{"%", "٪", "percent", "بالمائة", "بالمئة", "نسبة"}
	dayUnits       = []string{"day", "يوم", "أيام", "ايام"}
)

type triggerEntry struct {
	terms []string
	event rule.TriggerEvent
}

var triggerDictionary = []triggerEntry{
	{[]string{"attendance", "late", "absence", "absent", "حضور", "تأخير", "تأخر", "تاخير", "غياب", "غاب"}, rule.TriggerAttendance},
	{[]string{"warning", "violation", "انذار", "إنذار", "مخالفة", "مخالفات"}, rule.TriggerDisciplinary},
}
