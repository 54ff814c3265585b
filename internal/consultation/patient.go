package consultation

// HistoryEntry 既往病史条目
type HistoryEntry struct {
	Date      string `json:"date"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
}

// VitalSign 一次生命体征采样
type VitalSign struct {
	Date          string  `json:"date"`
	HeartRate     float64 `json:"heart_rate"`
	BloodPressure float64 `json:"blood_pressure"`
	Temperature   float64 `json:"temperature"`
}

// LabResult 一次化验采样
type LabResult struct {
	Date        string  `json:"date"`
	Cholesterol float64 `json:"cholesterol"`
	BloodSugar  float64 `json:"blood_sugar"`
	Creatinine  float64 `json:"creatinine"`
}

// PatientRecord 患者档案
// 身份字段在一次问诊内不可变；数据只通过 Store 的接口修改
type PatientRecord struct {
	Name           string         `json:"name"`
	Age            int            `json:"age"`
	Gender         string         `json:"gender"`
	Allergies      []string       `json:"allergies"`
	Medications    []string       `json:"medications"`
	MedicalHistory []HistoryEntry `json:"medical_history"`
	VitalSigns     []VitalSign    `json:"vital_signs"`
	LabResults     []LabResult    `json:"lab_results"`
}

// DefaultPatient 演示用患者档案，视图挂载时作为初始数据
func DefaultPatient() PatientRecord {
	return PatientRecord{
		Name:   "John Doe",
		Age:    35,
		Gender: "Male",
		Allergies: []string{
			"Penicillin",
			"Peanuts",
		},
		Medications: []string{
			"Lisinopril 10mg daily",
			"Metformin 500mg twice daily",
		},
		MedicalHistory: []HistoryEntry{
			{Date: "2022-05-15", Diagnosis: "Hypertension", Treatment: "Prescribed lisinopril"},
			{Date: "2021-11-03", Diagnosis: "Type 2 Diabetes", Treatment: "Dietary changes and metformin"},
		},
		VitalSigns: []VitalSign{
			{Date: "2023-01-01", HeartRate: 72, BloodPressure: 120, Temperature: 98.6},
			{Date: "2023-02-01", HeartRate: 75, BloodPressure: 118, Temperature: 98.4},
			{Date: "2023-03-01", HeartRate: 70, BloodPressure: 122, Temperature: 98.7},
			{Date: "2023-04-01", HeartRate: 73, BloodPressure: 121, Temperature: 98.5},
		},
		LabResults: []LabResult{
			{Date: "2023-01-01", Cholesterol: 180, BloodSugar: 95, Creatinine: 0.9},
			{Date: "2023-02-01", Cholesterol: 175, BloodSugar: 92, Creatinine: 0.8},
			{Date: "2023-03-01", Cholesterol: 190, BloodSugar: 98, Creatinine: 0.9},
			{Date: "2023-04-01", Cholesterol: 172, BloodSugar: 90, Creatinine: 0.7},
		},
	}
}
