package salesforce

import (
	"fmt"
	"time"
)

// CaseRecord is a Salesforce Case row as returned by the query API.
type CaseRecord struct {
	ID               string   `json:"Id"`
	CaseNumber       string   `json:"CaseNumber"`
	Subject          string   `json:"Subject"`
	Status           string   `json:"Status"`
	Substatus        string   `json:"Substatus__c"`
	BuyerName        string   `json:"Buyer_Name__c"`
	RequestorName    string   `json:"Requestor_Name__c"`
	GrandTotal       float64  `json:"Grand_Total_Final_Order__c"`
	StartDateTime    string   `json:"Start_Date_Time__c"`
	EndDateTime      string   `json:"End_Date_Time__c"`
	TicketType       string   `json:"Ticket_Type__c"`
	SpotdraftID      string   `json:"Spotdraft_ID__c"`
	VendorName       string   `json:"Vendor_Name__c"`
	StartDate        string   `json:"Start_Date__c"`
	ExecutionDate    string   `json:"Execution_Date__c"`
	StampPaperDate   string   `json:"Stamp_Paper_Date__c"`
	DaysToExpiry     *float64 `json:"days_to_expiry__c"`
	ExpiryStatus     string   `json:"expiry_status__c"`
	ContractStatus   string   `json:"Contract_Status__c"`
	TPIApplicability string   `json:"TPI_Applicability__c"`
	ACApplicability  string   `json:"AC_Applicability__c"`
	DDStatus         string   `json:"DD_Status__c"`
}

// CaseBudget is the derived budget block on a case view.
type CaseBudget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Display  string  `json:"display"`
}

// CaseView is a case reshaped for display alongside internal requests.
type CaseView struct {
	SalesforceID     string   `json:"salesforceId"`
	CaseNumber       string   `json:"caseNumber"`
	Subject          string   `json:"subject"`
	Status           string   `json:"status"`
	Substatus        string   `json:"substatus"`
	BuyerName        string   `json:"buyerName"`
	RequestorName    string   `json:"requestorName"`
	GrandTotal       float64  `json:"grandTotal"`
	StartDateTime    string   `json:"startDateTime"`
	EndDateTime      string   `json:"endDateTime"`
	TicketType       string   `json:"ticketType"`
	SpotdraftID      string   `json:"spotdraftId"`
	VendorName       string   `json:"vendorName"`
	ContractStart    string   `json:"contractStartDate"`
	ExecutionDate    string   `json:"executionDate"`
	StampPaperDate   string   `json:"stampPaperDate"`
	DaysToExpiry     *float64 `json:"daysToExpiry"`
	ExpiryStatus     string   `json:"expiryStatus"`
	ContractStatus   string   `json:"contractStatus"`
	TPIApplicability string   `json:"tpiApplicability"`
	ACApplicability  string   `json:"acApplicability"`
	DDStatus         string   `json:"ddStatus"`

	PSRID      string     `json:"id"`
	Title      string     `json:"title"`
	Department string     `json:"department"`
	Budget     CaseBudget `json:"budget"`
	Source     string     `json:"source"`
	CreatedAt  string     `json:"createdAt"`
}

// PSRView reshapes the case into the portal's request format so both
// record kinds render through the same views.
func (c *CaseRecord) PSRView() CaseView {
	view := CaseView{
		SalesforceID:     c.ID,
		CaseNumber:       c.CaseNumber,
		Subject:          c.Subject,
		Status:           c.Status,
		Substatus:        c.Substatus,
		BuyerName:        c.BuyerName,
		RequestorName:    c.RequestorName,
		GrandTotal:       c.GrandTotal,
		StartDateTime:    c.StartDateTime,
		EndDateTime:      c.EndDateTime,
		TicketType:       c.TicketType,
		SpotdraftID:      c.SpotdraftID,
		VendorName:       c.VendorName,
		ContractStart:    c.StartDate,
		ExecutionDate:    c.ExecutionDate,
		StampPaperDate:   c.StampPaperDate,
		DaysToExpiry:     c.DaysToExpiry,
		ExpiryStatus:     c.ExpiryStatus,
		ContractStatus:   c.ContractStatus,
		TPIApplicability: c.TPIApplicability,
		ACApplicability:  c.ACApplicability,
		DDStatus:         c.DDStatus,

		PSRID:      c.CaseNumber,
		Title:      c.Subject,
		Department: c.TicketType,
		Budget: CaseBudget{
			Amount:   c.GrandTotal,
			Currency: "INR",
			Display:  "INR 0",
		},
		Source:    "salesforce",
		CreatedAt: c.StartDateTime,
	}

	if view.Department == "" {
		view.Department = "N/A"
	}

	if c.GrandTotal != 0 {
		view.Budget.Display = fmt.Sprintf("INR %.1fM", c.GrandTotal/1e6)
	}

	if view.CreatedAt == "" {
		view.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	return view
}
