package consultation

// SectionKey 问诊记录中一个固定段落的标识
type SectionKey string

const (
	SectionChiefComplaint       SectionKey = "chiefcomplaint"
	SectionSymptoms             SectionKey = "symptoms"
	SectionExamination          SectionKey = "examination"
	SectionDiagnosis            SectionKey = "diagnosis"
	SectionTreatmentPlan        SectionKey = "treatmentplan"
	SectionDrugInteractionCheck SectionKey = "druginteractioncheck"
)

// Section 段落静态定义：键、展示名、AI 建议提示词
type Section struct {
	Key    SectionKey `json:"key"`
	Label  string     `json:"label"`
	Prompt string     `json:"-"`
}

// 段落顺序固定，UI 与提示词拼装都依赖这个顺序
var sections = []Section{
	{SectionChiefComplaint, "Chief Complaint", "Provide a brief chief complaint based on the patient's data."},
	{SectionSymptoms, "Symptoms", "List the patient's symptoms."},
	{SectionExamination, "Examination", "Describe the examination findings."},
	{SectionDiagnosis, "Diagnosis", "Provide possible diagnoses."},
	{SectionTreatmentPlan, "Treatment Plan", "Suggest a treatment plan."},
	{SectionDrugInteractionCheck, "Drug Interaction Check", "Check for any drug interactions based on current medications."},
}

// Sections 返回有序的段落列表副本
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// SectionByKey 按键查找段落定义
func SectionByKey(key SectionKey) (Section, bool) {
	for _, s := range sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// ValidSection 判断是否为合法段落键
func ValidSection(key SectionKey) bool {
	_, ok := SectionByKey(key)
	return ok
}

// Language 可选的展示语言
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NativeLanguage 原生录入语言，只有该语言下段落可编辑
const NativeLanguage = "en"

var languages = []Language{
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"zh", "Chinese"},
}

// Languages 返回支持的语言列表副本
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ValidLanguage 判断是否为受支持的语言代码
func ValidLanguage(code string) bool {
	for _, l := range languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// PrecheckTask 问诊前检查项
type PrecheckTask struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var precheckTasks = []PrecheckTask{
	{"verify-identity", "Verify patient identity"},
	{"check-vitals", "Check patient vitals"},
	{"review-history", "Review medical history"},
}

// PrecheckTasks 返回问诊前检查项列表副本
func PrecheckTasks() []PrecheckTask {
	out := make([]PrecheckTask, len(precheckTasks))
	copy(out, precheckTasks)
	return out
}

// ValidPrecheckTask 判断是否为合法检查项
func ValidPrecheckTask(id string) bool {
	for _, t := range precheckTasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
