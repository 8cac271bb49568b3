package stock

// Etiquetas legibles guardadas en Balance.LastTransactionType.

func SentLabel(destination, actor string) string {
	return "sent to " + destination + " by " + actor
}

func ReceivedLabel(source, actor string) string {
	return "received from " + source + " by " + actor
}

func AdjustmentLabel(reason string) string {
	return "Manual Adjustment: " + reason
}

func ConsumptionLabel(takenBy string) string {
	return "Taken for construction by " + takenBy
}
