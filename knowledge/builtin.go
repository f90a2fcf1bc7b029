package knowledge

import "time"

// BuiltinVersion identifies the compiled-in rule tables.
const BuiltinVersion = "builtin-2026.08"

// Builtin returns the compiled-in rule tables. These ship with the binary and
// are used whenever no knowledge file is configured. Interaction pairs are
// stored in a single direction; the evaluator checks both directions, so a
// pair listed twice would produce duplicate findings.
func Builtin() *Base {
	return &Base{
		Version:  BuiltinVersion,
		LoadedAt: time.Now(),
		Interactions: map[string][]DrugInteraction{
			"warfarina": {
				{
					WithDrug:       "aspirina",
					Severity:       SeverityHigh,
					Description:    "Riesgo aumentado de sangrado por efecto anticoagulante aditivo",
					Recommendation: "Evitar combinación. Si es necesaria, monitorear INR estrechamente",
				},
				{
					WithDrug:       "ibuprofeno",
					Severity:       SeverityHigh,
					Description:    "Los AINEs aumentan el riesgo de sangrado gastrointestinal con anticoagulantes",
					Recommendation: "Preferir paracetamol para analgesia",
				},
				{
					WithDrug:       "amiodarona",
					Severity:       SeverityHigh,
					Description:    "La amiodarona inhibe el metabolismo de la warfarina y potencia su efecto",
					Recommendation: "Reducir dosis de warfarina y monitorear INR",
				},
			},
			"fluoxetina": {
				{
					WithDrug:       "tramadol",
					Severity:       SeverityHigh,
					Description:    "Riesgo de síndrome serotoninérgico por efecto serotoninérgico combinado",
					Recommendation: "Evitar combinación o vigilar signos de toxicidad serotoninérgica",
				},
				{
					WithDrug:       "sertralina",
					Severity:       SeverityModerate,
					Description:    "Duplicación de inhibidores selectivos de recaptura de serotonina",
					Recommendation: "Usar un solo ISRS",
				},
			},
			"omeprazol": {
				{
					WithDrug:       "clopidogrel",
					Severity:       SeverityModerate,
					Description:    "El omeprazol reduce la activación del clopidogrel y su efecto antiagregante",
					Recommendation: "Considerar pantoprazol como alternativa",
				},
			},
			"enalapril": {
				{
					WithDrug:       "espironolactona",
					Severity:       SeverityModerate,
					Description:    "Riesgo de hiperkalemia por retención combinada de potasio",
					Recommendation: "Monitorear potasio sérico periódicamente",
				},
				{
					WithDrug:       "ibuprofeno",
					Severity:       SeverityModerate,
					Description:    "Los AINEs reducen el efecto antihipertensivo y afectan la función renal",
					Recommendation: "Vigilar presión arterial y creatinina",
				},
			},
			"litio": {
				{
					WithDrug:       "ibuprofeno",
					Severity:       SeverityHigh,
					Description:    "Los AINEs reducen la excreción renal de litio y elevan su concentración",
					Recommendation: "Evitar AINEs; monitorear litemia si son imprescindibles",
				},
			},
			"digoxina": {
				{
					WithDrug:       "amiodarona",
					Severity:       SeverityCritical,
					Description:    "La amiodarona duplica los niveles de digoxina con riesgo de toxicidad",
					Recommendation: "Reducir dosis de digoxina al 50% y monitorear niveles",
				},
			},
			"sildenafil": {
				{
					WithDrug:       "nitroglicerina",
					Severity:       SeverityCritical,
					Description:    "Hipotensión severa potencialmente fatal con nitratos",
					Recommendation: "Combinación absolutamente contraindicada",
				},
			},
			"metotrexato": {
				{
					WithDrug:       "trimetoprima",
					Severity:       SeverityHigh,
					Description:    "Antagonismo de folatos combinado con riesgo de mielosupresión",
					Recommendation: "Evitar combinación",
				},
			},
			"tramadol": {
				{
					WithDrug:       "carbamazepina",
					Severity:       SeverityModerate,
					Description:    "La carbamazepina reduce la concentración y eficacia del tramadol",
					Recommendation: "Considerar analgésico alternativo",
				},
			},
			"alprazolam": {
				{
					WithDrug:       "ketoconazol",
					Severity:       SeverityModerate,
					Description:    "El ketoconazol inhibe el metabolismo del alprazolam y prolonga la sedación",
					Recommendation: "Reducir dosis de alprazolam",
				},
			},
			"simvastatina": {
				{
					WithDrug:       "claritromicina",
					Severity:       SeverityHigh,
					Description:    "Riesgo de miopatía y rabdomiólisis por inhibición de CYP3A4",
					Recommendation: "Suspender estatina durante el tratamiento antibiótico",
				},
				{
					WithDrug:       "amlodipino",
					Severity:       SeverityLow,
					Description:    "Exposición aumentada a simvastatina con dosis altas",
					Recommendation: "No exceder 20mg de simvastatina",
				},
			},
			"metformina": {
				{
					WithDrug:       "prednisona",
					Severity:       SeverityLow,
					Description:    "Los corticoides elevan la glucemia y reducen el control metabólico",
					Recommendation: "Reforzar monitoreo de glucosa durante el tratamiento",
				},
			},
		},
		AllergyRules: map[string][]AllergyRule{
			"penicilina": {
				{
					MedicationGroup: "amoxicilina",
					Severity:        SeverityCritical,
					Description:     "Reactividad cruzada con penicilinas: riesgo de anafilaxia",
				},
				{
					MedicationGroup: "ampicilina",
					Severity:        SeverityCritical,
					Description:     "Reactividad cruzada con penicilinas: riesgo de anafilaxia",
				},
				{
					MedicationGroup: "cefalexina",
					Severity:        SeverityHigh,
					Description:     "Reactividad cruzada parcial entre penicilinas y cefalosporinas",
				},
			},
			"sulfas": {
				{
					MedicationGroup: "sulfametoxazol",
					Severity:        SeverityCritical,
					Description:     "Alergia a sulfonamidas: riesgo de reacción cutánea severa",
				},
				{
					MedicationGroup: "sulfasalazina",
					Severity:        SeverityHigh,
					Description:     "Reactividad cruzada con sulfonamidas",
				},
			},
			"aspirina": {
				{
					MedicationGroup: "ibuprofeno",
					Severity:        SeverityHigh,
					Description:     "Reactividad cruzada entre AINEs en pacientes sensibles a aspirina",
				},
				{
					MedicationGroup: "naproxeno",
					Severity:        SeverityHigh,
					Description:     "Reactividad cruzada entre AINEs en pacientes sensibles a aspirina",
				},
			},
			"yodo": {
				{
					MedicationGroup: "amiodarona",
					Severity:        SeverityHigh,
					Description:     "La amiodarona contiene yodo",
				},
			},
		},
		ConditionRules: map[string][]ConditionRule{
			"asma": {
				{
					Medication:     "aspirina",
					Severity:       SeverityHigh,
					Description:    "La aspirina puede precipitar broncoespasmo en asmáticos",
					Recommendation: "Usar paracetamol como alternativa",
				},
				{
					Medication:     "propranolol",
					Severity:       SeverityHigh,
					Description:    "Los betabloqueadores no selectivos inducen broncoconstricción",
					Recommendation: "Preferir betabloqueadores cardioselectivos si son imprescindibles",
				},
			},
			"insuficiencia renal": {
				{
					Medication:     "metformina",
					Severity:       SeverityHigh,
					Description:    "Riesgo de acidosis láctica con función renal disminuida",
					Recommendation: "Ajustar dosis o suspender según tasa de filtración",
				},
				{
					Medication:     "ibuprofeno",
					Severity:       SeverityModerate,
					Description:    "Los AINEs deterioran la perfusión renal",
					Recommendation: "Evitar uso prolongado",
				},
			},
			"úlcera péptica": {
				{
					Medication:     "aspirina",
					Severity:       SeverityHigh,
					Description:    "Riesgo de sangrado digestivo con úlcera activa",
					Recommendation: "Evitar; considerar protección gástrica si es imprescindible",
				},
				{
					Medication:     "ibuprofeno",
					Severity:       SeverityHigh,
					Description:    "Los AINEs agravan la enfermedad ulcerosa",
					Recommendation: "Usar paracetamol como alternativa",
				},
			},
			"hipertensión": {
				{
					Medication:     "ibuprofeno",
					Severity:       SeverityModerate,
					Description:    "Los AINEs elevan la presión arterial y antagonizan antihipertensivos",
					Recommendation: "Vigilar presión arterial durante el uso",
				},
				{
					Medication:     "pseudoefedrina",
					Severity:       SeverityHigh,
					Description:    "Los descongestivos simpaticomiméticos elevan la presión arterial",
					Recommendation: "Evitar en hipertensión no controlada",
				},
			},
			"diabetes": {
				{
					Medication:     "prednisona",
					Severity:       SeverityModerate,
					Description:    "Los corticoides producen hiperglucemia",
					Recommendation: "Intensificar monitoreo de glucosa",
				},
			},
			"glaucoma": {
				{
					Medication:     "amitriptilina",
					Severity:       SeverityHigh,
					Description:    "Los anticolinérgicos pueden precipitar glaucoma de ángulo cerrado",
					Recommendation: "Evitar en glaucoma de ángulo estrecho",
				},
			},
			"embarazo": {
				{
					Medication:     "warfarina",
					Severity:       SeverityHigh,
					Description:    "La warfarina es teratogénica",
					Recommendation: "Cambiar a heparina de bajo peso molecular",
				},
				{
					Medication:     "enalapril",
					Severity:       SeverityHigh,
					Description:    "Los IECA causan daño fetal en segundo y tercer trimestre",
					Recommendation: "Suspender y usar antihipertensivo seguro en embarazo",
				},
			},
		},
		TherapeuticGroups: []TherapeuticGroup{
			{
				Label:   "analgésicos",
				Members: []string{"paracetamol", "tramadol", "codeína", "metamizol"},
			},
			{
				Label:   "antiinflamatorios",
				Members: []string{"ibuprofeno", "naproxeno", "diclofenaco", "aspirina", "ketorolaco"},
			},
			{
				Label:   "antibióticos",
				Members: []string{"amoxicilina", "azitromicina", "ciprofloxacino", "cefalexina", "claritromicina"},
			},
			{
				Label:   "antidepresivos",
				Members: []string{"fluoxetina", "sertralina", "escitalopram", "paroxetina", "venlafaxina"},
			},
			{
				Label:   "antihipertensivos",
				Members: []string{"enalapril", "losartán", "amlodipino", "telmisartán"},
			},
			{
				Label:   "benzodiacepinas",
				Members: []string{"diazepam", "alprazolam", "clonazepam", "lorazepam"},
			},
			{
				Label:   "estatinas",
				Members: []string{"atorvastatina", "simvastatina", "rosuvastatina", "pravastatina"},
			},
			{
				Label:   "inhibidores de bomba de protones",
				Members: []string{"omeprazol", "pantoprazol", "esomeprazol", "lansoprazol"},
			},
		},
		AgeRestrictions: map[string]AgeRestriction{
			"aspirina": {
				MinAge:  16,
				Warning: "Riesgo de síndrome de Reye en menores de 16 años",
			},
			"codeína": {
				MinAge:  12,
				Warning: "Depresión respiratoria en menores de 12 años",
			},
			"tramadol": {
				MinAge:  12,
				Warning: "No recomendado en menores de 12 años",
			},
			"tetraciclina": {
				MinAge:  8,
				Warning: "Decoloración dental permanente en menores de 8 años",
			},
			"difenhidramina": {
				MaxAge:  65,
				Warning: "Efectos anticolinérgicos y riesgo de caídas en adultos mayores",
			},
			"diazepam": {
				MaxAge:  65,
				Warning: "Sedación prolongada y riesgo de caídas en adultos mayores",
			},
			"metoclopramida": {
				MinAge:  18,
				Warning: "Riesgo de reacciones extrapiramidales en menores de 18 años",
			},
		},
	}
}
