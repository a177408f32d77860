package intent

import "fmt"

// CannedReply returns the fixed answer for intents the receptionist does not
// act on directly.
func CannedReply(intent Intent, businessName, phone string) string {
	if businessName == "" {
		businessName = "our clinic"
	}
	switch intent {
	case IntentBook:
		return "I'd be happy to help you schedule an appointment! Please share your name, phone number, and preferred date and time."
	case IntentAvailability:
		return "I can check our availability for you. What date are you looking for?"
	case IntentEmergency:
		return fmt.Sprintf("If this is a dental emergency, please call our office immediately at %s or visit the nearest emergency room if it's after hours.", phone)
	case IntentCancel:
		return fmt.Sprintf("To cancel an appointment, please call our office at %s. We appreciate 24-hour notice when possible.", phone)
	case IntentReschedule:
		return fmt.Sprintf("I understand you'd like to reschedule. Please call our office at %s and our staff will be happy to help you.", phone)
	case IntentGreeting:
		return fmt.Sprintf("Hello, and welcome to %s! How can I help you today?", businessName)
	default:
		return fmt.Sprintf("Thank you for contacting %s! You can ask me about appointments, our services, or office hours. For immediate assistance, call us at %s.", businessName, phone)
	}
}
