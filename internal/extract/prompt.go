package extract

import "billforge/internal/domain"

// BuildExtractionPrompt returns the prompt for extracting structured invoice
// or quote details from free-form text. The output schema matches what the
// normalization layer expects; anything the model gets wrong is repaired
// there, not here.
func BuildExtractionPrompt(docType domain.DocumentType) string {
	return `You are a billing data extraction assistant. Read the text below and extract the details needed to draft a ` + string(docType) + `.

IMPORTANT INSTRUCTIONS:
- Extract EVERY line item mentioned. Do not skip, summarize, or merge items.
- Quantities, unit prices, tax rates and discounts must be plain decimal numbers with no currency symbols or thousands separators.
- Normalize dates to YYYY-MM-DD format. Strip times and surrounding text.
- If the text names a client, copy their details exactly as written. Do not invent contact details.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation.

The JSON object must follow this schema:
{
  "client": {
    "name": "",
    "email": "",
    "phone": "",
    "address": "",
    "tax_id": ""
  },
  "items": [
    {
      "description": "",
      "quantity": 0,
      "unit_price": 0,
      "tax_rate": 0
    }
  ],
  "document": {
    "issue_date": "",
    "due_date": "",
    "discount": 0,
    "notes": ""
  }
}

If a field is not present in the text, use empty string for text and 0 for numbers. Never guess values that are not in the text.`
}
