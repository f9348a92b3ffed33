package bot

// Тексты ответов пользователю
const (
	helpText = "Я сообщу вам о погоде в том месте, которое сообщите мне.\n" +
		"Я могу ответить на:\n" +
		"- Текстовое сообщение с названием населенного пункта.\n" +
		"- Голосовое сообщение с названием населенного пункта.\n" +
		"- Сообщение с геопозицией."

	voiceTooLongText    = "Я не могу понять голосовое сообщение длительностью более 30 секунд."
	voiceFetchFailed    = "Не удалось получить голосовое сообщение."
	voiceNotRecognized  = "Не удалось распознать голосовое сообщение."
	synthesisFailedText = "Не удалось озвучить прогноз погоды."

	placeNotFoundFormat    = "Я не нашел населенный пункт \"%s\"."
	locationNotFoundText   = "Я не нашел населенный пункт по этим координатам."
	weatherUnavailableText = "Не удалось получить данные о погоде."
)
