package domain

// Static description tables for the rate-code and payment-type dimensions.
// The source CSV carries only numeric ids; descriptions come from the TLC
// data dictionary. Ids outside the tables are labeled "Other" so every
// dimension row always has a description.

const OtherDescription = "Other"

var rateCodeDescriptions = map[int]string{
	1: "Standard rate",
	2: "JFK airport flat fare",
	3: "Newark airport flat fare",
	4: "Nassau or Westchester fare",
	5: "Negotiated fare",
	6: "Group ride",
}

var paymentTypeDescriptions = map[int]string{
	1: "Credit card",
	2: "Cash",
	3: "No charge",
	4: "Dispute",
	5: "Unknown",
	6: "Voided trip",
}

// DescribeRateCode returns the static description for a rate code id.
func DescribeRateCode(id int) string {
	if d, ok := rateCodeDescriptions[id]; ok {
		return d
	}
	return OtherDescription
}

// DescribePaymentType returns the static description for a payment type id.
func DescribePaymentType(id int) string {
	if d, ok := paymentTypeDescriptions[id]; ok {
		return d
	}
	return OtherDescription
}
