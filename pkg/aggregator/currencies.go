package aggregator

// CurrencyName resolves an ISO-4217 style currency symbol to its display
// name. Unknown symbols map to a fixed placeholder, never an error.
func CurrencyName(symbol string) string {
	switch symbol {
	case "USD":
		return "US Dollar"
	case "EUR":
		return "Euro"
	case "GBP":
		return "British Pound"
	case "JPY":
		return "Japanese Yen"
	case "CHF":
		return "Swiss Franc"
	case "CAD":
		return "Canadian Dollar"
	case "AUD":
		return "Australian Dollar"
	case "NZD":
		return "New Zealand Dollar"
	case "SEK":
		return "Swedish Krona"
	case "NOK":
		return "Norwegian Krone"
	case "DKK":
		return "Danish Krone"
	case "PLN":
		return "Polish Zloty"
	case "CZK":
		return "Czech Koruna"
	case "HUF":
		return "Hungarian Forint"
	case "RON":
		return "Romanian Leu"
	case "TRY":
		return "Turkish Lira"
	case "RUB":
		return "Russian Ruble"
	case "UAH":
		return "Ukrainian Hryvnia"
	case "ILS":
		return "Israeli New Shekel"
	case "AED":
		return "UAE Dirham"
	case "SAR":
		return "Saudi Riyal"
	case "QAR":
		return "Qatari Riyal"
	case "KWD":
		return "Kuwaiti Dinar"
	case "BHD":
		return "Bahraini Dinar"
	case "OMR":
		return "Omani Rial"
	case "ZAR":
		return "South African Rand"
	case "EGP":
		return "Egyptian Pound"
	case "NGN":
		return "Nigerian Naira"
	case "KES":
		return "Kenyan Shilling"
	case "INR":
		return "Indian Rupee"
	case "PKR":
		return "Pakistani Rupee"
	case "BDT":
		return "Bangladeshi Taka"
	case "CNY":
		return "Chinese Yuan"
	case "HKD":
		return "Hong Kong Dollar"
	case "SGD":
		return "Singapore Dollar"
	case "KRW":
		return "South Korean Won"
	case "TWD":
		return "New Taiwan Dollar"
	case "THB":
		return "Thai Baht"
	case "MYR":
		return "Malaysian Ringgit"
	case "IDR":
		return "Indonesian Rupiah"
	case "PHP":
		return "Philippine Peso"
	case "VND":
		return "Vietnamese Dong"
	case "MXN":
		return "Mexican Peso"
	case "BRL":
		return "Brazilian Real"
	case "ARS":
		return "Argentine Peso"
	case "CLP":
		return "Chilean Peso"
	case "COP":
		return "Colombian Peso"
	case "PEN":
		return "Peruvian Sol"
	case "UYU":
		return "Uruguayan Peso"
	default:
		return "Unknown Currency"
	}
}
