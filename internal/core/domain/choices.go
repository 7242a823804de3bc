package domain

// BillerID is the NIBSS-assigned biller identifier for Alert MFB.
// Every mandate request is scoped to this biller.
const BillerID = "455"

// Role represents a user role in the system
type Role string

const (
	RoleCSO    Role = "CSO"
	RoleCredit Role = "CREDIT"
	RoleIT     Role = "IT"
	RoleOthers Role = "OTHERS"
)

// Roles maps role codes to display labels
var Roles = map[string]string{
	string(RoleCSO):    "CSO",
	string(RoleCredit): "Credit",
	string(RoleIT):     "IT",
	string(RoleOthers): "Others",
}

// ValidRole checks if a role code is a member of the closed role set
func ValidRole(role string) bool {
	_, ok := Roles[role]
	return ok
}

// Branches lists the bank branches a mandate can be initiated from
var Branches = []string{
	"HEAD OFFICE",
	"EBUTE METTA",
	"IDUMAGBO",
	"IDUMOTA",
	"SANGO",
	"IKEJA",
	"AGEGE",
	"IKORODU",
	"MUSHIN",
	"TRADE FAIR",
	"IKOTUN",
	"AJAH",
	"ABEOKUTA",
	"IBANDAN",
}

// ValidBranch checks if a branch name is known
func ValidBranch(branch string) bool {
	for _, b := range Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// BankCodes maps 3-digit CBN bank codes to bank names
var BankCodes = map[string]string{
	"044": "Access or Diamond Bank",
	"050": "Ecobank Nigeria",
	"084": "Enterprise Bank",
	"070": "Fidelity Bank",
	"011": "First Bank",
	"214": "FCMB",
	"058": "Guaranty Trust Bank",
	"301": "Jaiz Bank",
	"082": "Keystone Bank",
	"014": "Mainstreet Bank",
	"076": "Skye Bank",
	"039": "Stanbic IBTC",
	"232": "Sterling Bank",
	"032": "Union Bank",
	"033": "UBA",
	"215": "Unity Bank",
	"035": "WEMA Bank",
	"057": "Zenith Bank",
	"101": "Providus Bank",
	"104": "Parallex Bank",
	"303": "Lotus Bank",
	"105": "Premium Trust Bank",
	"106": "Signature Bank",
	"103": "Globus Bank",
	"102": "Titan Trust Bank",
	"067": "Polaris Bank",
	"107": "Optimus Bank",
	"068": "Standard Chartered Bank",
	"100": "Suntrust Bank",
}

// ValidBankCode checks if a bank code is known
func ValidBankCode(code string) bool {
	_, ok := BankCodes[code]
	return ok
}

// MandateTypes maps mandate type codes to labels
var MandateTypes = map[string]string{
	"1": "Direct Debit",
	"2": "Balance Enquiry",
}

// ValidMandateType checks if a mandate type code is known
func ValidMandateType(code string) bool {
	_, ok := MandateTypes[code]
	return ok
}

// Frequencies maps debit frequency codes to labels
var Frequencies = map[string]string{
	"0": "Variable",
	"1": "Weekly",
	"2": "Every 2 Weeks",
	"4": "Monthly",
}

// ValidFrequency checks if a frequency code is known
func ValidFrequency(code string) bool {
	_, ok := Frequencies[code]
	return ok
}

// MandateStatuses maps mandate status codes to labels
var MandateStatuses = map[string]string{
	"1": "Active",
	"2": "Suspend",
	"3": "Delete",
}

// ValidMandateStatus checks if a mandate status code is known
func ValidMandateStatus(code string) bool {
	_, ok := MandateStatuses[code]
	return ok
}

// BillerStatuses maps biller status codes to labels
var BillerStatuses = map[string]string{
	"0": "Disable",
	"1": "Enable",
}

// ValidBillerStatus checks if a biller status code is known
func ValidBillerStatus(code string) bool {
	_, ok := BillerStatuses[code]
	return ok
}

// WorkflowStatuses maps biller workflow status codes to labels
var WorkflowStatuses = map[string]string{
	"1":  "Biller Initiated",
	"2":  "Biller Authorized",
	"3":  "Biller Rejected",
	"4":  "Biller Approved",
	"5":  "Biller Disapproved",
	"6":  "Bank Authorized",
	"7":  "Bank Rejected",
	"8":  "Bank Approved",
	"9":  "Bank Disapproved",
	"10": "Bank Initiated",
}

// ValidWorkflowStatus checks if a workflow status code is known
func ValidWorkflowStatus(code string) bool {
	_, ok := WorkflowStatuses[code]
	return ok
}
