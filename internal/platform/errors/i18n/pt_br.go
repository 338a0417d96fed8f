package i18n

// messagesPtBR holds the Brazilian Portuguese user-facing message templates.
var messagesPtBR = map[Code]string{
	"UNKNOWN":                        "Algo deu errado. Tente novamente.",
	"INVALID_ARGUMENT":               "A requisição está malformada.",
	"ATTENDEE_ADDRESS_EMPTY":         "O endereço do participante é obrigatório.",
	"BADGE_ALREADY_CLAIMED":          "Este participante já resgatou um crachá.",
	"BADGE_ALREADY_HELD":             "Este participante já possui um crachá.",
	"BADGE_TRANSFER_NOT_OWNER":       "Apenas o titular atual pode transferir o crachá {{.badge_id}}.",
	"BADGE_TRANSFER_RECIPIENT_EMPTY": "O destinatário da transferência é obrigatório.",
	"REGISTRY_BASE_URI_EMPTY":        "A URI base é obrigatória.",
	"UNAUTHORIZED":                   "Você não tem permissão para executar esta ação.",
	"NOT_FOUND":                      "O crachá {{.badge_id}} nunca foi emitido.",
}
