package registration

import (
	"fmt"
	"strings"

	"hotel-bot/api/internal/extract"
)

const (
	msgUnauthorized      = "❌ No tienes autorización para usar este bot."
	msgUnauthorizedStart = msgUnauthorized + "\nContacta al administrador del sistema."

	msgWelcome = "🏨 *Bot de Registro de Clientes*\n\n" +
		"¡Hola! Soy el bot del hotel para registrar clientes.\n\n" +
		"Comandos disponibles:\n" +
		"• /nuevo - Registrar nuevo cliente\n" +
		"• /resumen - Ver resumen del día\n" +
		"• /habitaciones - Ver disponibilidad\n" +
		"• /salida DNI - Registrar la salida real\n" +
		"• /fotos - Últimas fotos de documentos\n" +
		"• /ayuda - Obtener ayuda\n\n" +
		"Para comenzar usa /nuevo y envía una foto del documento del cliente."

	msgNewClient = "📷 *Nuevo Cliente*\n\n" +
		"Por favor, envía una foto del DNI del cliente para comenzar el registro.\n\n" +
		"✅ *Consejos para mejores resultados:*\n" +
		"• La foto puede ser tomada desde cualquier ángulo\n" +
		"• No importa si está ligeramente inclinada\n" +
		"• Asegúrate de que el texto sea visible\n" +
		"• El bot automáticamente mejorará la imagen\n" +
		"• Si la primera foto no funciona, puedes intentar con otra"

	msgHelp = "🆘 *Ayuda - Bot de Registro de Clientes*\n\n" +
		"*Comandos disponibles:*\n" +
		"• /start - Iniciar bot\n" +
		"• /nuevo - Registrar nuevo cliente\n" +
		"• /resumen - Ver resumen del día\n" +
		"• /habitaciones - Ver disponibilidad\n" +
		"• /salida DNI - Registrar la salida real del cliente\n" +
		"• /fotos - Ver las últimas fotos de documentos\n" +
		"• /ayuda - Mostrar esta ayuda\n\n" +
		"*Cómo usar:*\n" +
		"1. Usa /nuevo y envía una foto del DNI\n" +
		"2. El bot extraerá los datos automáticamente\n" +
		"3. Completa la información solicitada\n" +
		"4. Confirma el registro\n\n" +
		"*Sobre las fotos de DNI:*\n" +
		"• Funciona con fotos desde cualquier ángulo\n" +
		"• El bot mejora automáticamente la calidad\n" +
		"• Reconoce DNI peruanos, venezolanos y otros\n" +
		"• Si una foto no funciona, intenta con otra\n\n" +
		"*Soporte:*\n" +
		"Si tienes problemas, contacta al administrador."

	msgNotExpectingPhoto = "❓ No estoy esperando una foto en este momento.\n" +
		"Usa /nuevo para comenzar un nuevo registro."
	msgPhotoDownload  = "❌ No pude descargar la foto. Por favor, envíala nuevamente."
	msgPhotoNotStored = "⚠️ No se pudo guardar la foto en el archivo. El registro puede continuar."
	msgNoSession      = "Usa /nuevo para comenzar un nuevo registro."
	msgStale          = "Esta opción ya no está disponible."
	msgSendPhoto      = "📷 Envía una foto del documento del cliente."
	msgUseButtons     = "Usa los botones del último mensaje para continuar."
	msgUnknownCommand = "Comando no reconocido. Usa /ayuda para ver los comandos."

	msgQualityExcellent = "✅ *¡Excelente!* Datos extraídos correctamente"
	msgQualityGood      = "✅ *¡Bien!* La mayoría de datos fueron extraídos"
	msgQualityPartial   = "⚠️ *Extracción parcial* - Algunos datos pueden necesitar corrección"

	msgAskDuration = "⏰ *¿Cuántas horas usará el cliente?*\n\nSelecciona la duración de la estancia:"
	msgAskPrice    = "💰 *¿Precio cobrado?*\n\nSelecciona el precio cobrado al cliente:"
	msgCustomPrice = "Escribe el precio cobrado (ejemplo: S/35, $20, etc.):"
	msgAskPayment  = "💳 *¿Forma de pago?*\n\nSelecciona la forma de pago utilizada:"
	msgAskRoom     = "🏠 *¿Qué habitación usará el cliente?*\n\n" +
		"🟢 = Disponible | 🔴 = Ocupada\n\nSelecciona la habitación:"
	msgRoomBusy   = "⚠️ Esta habitación está ocupada"
	msgCustomRoom = "Escribe el número o nombre de la habitación:"
	msgAskObs     = "📝 *¿Alguna observación?*\n\n" +
		"Puedes agregar comentarios adicionales sobre el cliente o la reserva:"
	msgAddObs = "📝 *Agregar observación*\n\nEscribe tu observación sobre el cliente o la reserva:"

	msgEditMenu      = "✏️ *Editar datos*\n\n¿Qué dato deseas editar?"
	msgEditName      = "👤 Escribe el nombre completo del cliente:"
	msgEditID        = "🆔 Escribe el número de documento (7 a 10 dígitos):"
	msgEditBirth     = "📅 Escribe la fecha de nacimiento (DD/MM/AAAA):"
	msgEditNat       = "🌍 Selecciona la nacionalidad:"
	msgInvalidName   = "❌ Nombre no válido. Escribe el nombre completo del cliente."
	msgInvalidID     = "❌ Número de documento no válido. Debe tener entre 7 y 10 dígitos."
	msgInvalidBirth  = "❌ Fecha no válida. Usa el formato DD/MM/AAAA."
	msgInvalidAnswer = "❌ El valor no puede estar vacío. Inténtalo de nuevo."

	msgRestarted = "🔄 *Proceso reiniciado*\n\n" +
		"El registro ha sido reiniciado.\n" +
		"Usa /nuevo para comenzar un nuevo registro."
	msgSaved = "✅ *Registro exitoso*\n\n" +
		"El cliente ha sido registrado correctamente.\n" +
		"Los datos se han guardado en la hoja de registros.\n\n" +
		"Usa /nuevo para registrar otro cliente."
	msgSaveFailed = "❌ *Error al guardar*\n\n" +
		"Hubo un problema al guardar los datos.\n" +
		"Por favor, intenta nuevamente."
	msgSystemError = "❌ *Error del sistema*\n\n" +
		"Ocurrió un error inesperado. Contacta al administrador."
	msgCancelled = "❌ *Registro cancelado*\n\n" +
		"El registro ha sido cancelado.\n" +
		"Usa /nuevo para comenzar un nuevo registro."

	msgSummaryFailed      = "❌ Error al obtener el resumen diario."
	msgAvailabilityFailed = "❌ Error al obtener la disponibilidad."
	msgCheckoutUsage      = "Uso: /salida DNI"
	msgCheckoutFailed     = "❌ Error al registrar la salida."
	msgPhotosFailed       = "❌ Error al obtener las fotos."
	msgNoPhotos           = "📷 No hay fotos guardadas."

	notDetected = "❌ No detectado"
)

// Данные callback-кнопок.
const (
	cbContinue  = "continue"
	cbEdit      = "edit"
	cbEditField = "edit:"
	cbNat       = "nat:"
	cbRestart   = "restart"
	cbCancel    = "cancel"
	cbDuration  = "dur:"
	cbPrice     = "price:"
	cbPayment   = "pay:"
	cbRoom      = "room:"
	cbRoomBusy  = "busy:"
	cbCustom    = "custom"
	cbObsAdd    = "obs:add"
	cbObsSkip   = "obs:skip"
	cbConfirm   = "confirm"
)

var (
	btnRestart = Button{Text: "🔄 Reiniciar", Data: cbRestart}
	btnCancel  = Button{Text: "❌ Cancelar", Data: cbCancel}
)

func qualityNotice(q extract.Quality) string {
	switch q {
	case extract.QualityExcellent:
		return msgQualityExcellent
	case extract.QualityGood:
		return msgQualityGood
	default:
		return msgQualityPartial
	}
}

func orNotDetected(o extract.Optional[string]) string {
	if v, ok := o.Get(); ok {
		return esc(v)
	}
	return notDetected
}

func reviewText(f extract.Fields) string {
	nat := notDetected
	if n, ok := f.Nationality.Get(); ok {
		nat = n.Label()
	}
	var b strings.Builder
	b.WriteString("📋 *Datos extraídos del DNI:*\n\n")
	fmt.Fprintf(&b, "👤 *Nombre:* %s\n", orNotDetected(f.FullName))
	fmt.Fprintf(&b, "🆔 *DNI:* %s\n", orNotDetected(f.IDNumber))
	fmt.Fprintf(&b, "📅 *Fecha Nacimiento:* %s\n", orNotDetected(f.BirthDate))
	fmt.Fprintf(&b, "🌍 *Nacionalidad:* %s\n", nat)
	return b.String()
}

func reviewKeyboard() [][]Button {
	return [][]Button{
		row(Button{Text: "✅ Continuar", Data: cbContinue}),
		row(Button{Text: "✏️ Editar datos", Data: cbEdit}),
		row(btnRestart),
		row(btnCancel),
	}
}

func editKeyboard() [][]Button {
	return [][]Button{
		row(Button{Text: "👤 Editar nombre", Data: cbEditField + string(FieldName)}),
		row(Button{Text: "🆔 Editar DNI", Data: cbEditField + string(FieldID)}),
		row(Button{Text: "📅 Editar fecha nacimiento", Data: cbEditField + string(FieldBirthDate)}),
		row(Button{Text: "🌍 Editar nacionalidad", Data: cbEditField + string(FieldNationality)}),
		row(Button{Text: "✅ Continuar registro", Data: cbContinue}),
		row(btnRestart),
		row(btnCancel),
	}
}

func nationalityKeyboard() [][]Button {
	kb := make([][]Button, 0, len(extract.Nationalities())+1)
	for _, n := range extract.Nationalities() {
		kb = append(kb, row(Button{Text: n.Label(), Data: cbNat + string(n)}))
	}
	return append(kb, row(btnRestart))
}

func durationKeyboard() [][]Button {
	kb := make([][]Button, 0, len(Durations)+1)
	for _, d := range Durations {
		kb = append(kb, row(Button{Text: d.Label, Data: cbDuration + d.Key}))
	}
	return append(kb, row(btnRestart))
}

func indexedKeyboard(prefix string, options []string, custom string) [][]Button {
	kb := make([][]Button, 0, len(options)+2)
	for i, o := range options {
		kb = append(kb, row(Button{Text: o, Data: fmt.Sprintf("%s%d", prefix, i)}))
	}
	if custom != "" {
		kb = append(kb, row(Button{Text: custom, Data: prefix + cbCustom}))
	}
	return append(kb, row(btnRestart))
}

func roomKeyboard(av Availability) [][]Button {
	kb := make([][]Button, 0, len(av.Available)+len(av.Occupied)+2)
	for _, room := range av.Available {
		kb = append(kb, row(Button{Text: "🟢 Habitación " + room, Data: cbRoom + room}))
	}
	for _, room := range av.Occupied {
		kb = append(kb, row(Button{Text: "🔴 Habitación " + room + " (ocupada)", Data: cbRoomBusy + room}))
	}
	kb = append(kb, row(Button{Text: "🏠 Otra habitación", Data: cbRoom + cbCustom}))
	return append(kb, row(btnRestart))
}

func observationsKeyboard() [][]Button {
	return [][]Button{
		row(Button{Text: "📝 Agregar observación", Data: cbObsAdd}),
		row(Button{Text: "➡️ Continuar sin observaciones", Data: cbObsSkip}),
		row(btnRestart),
	}
}

func summaryText(s *Session) string {
	obs := s.Observations
	if obs == "" {
		obs = "Ninguna"
	}
	var b strings.Builder
	b.WriteString("📋 *Resumen del Registro*\n\n")
	fmt.Fprintf(&b, "👤 *Cliente:* %s\n", esc(s.Document.FullName.OrElse("N/A")))
	fmt.Fprintf(&b, "🆔 *DNI:* %s\n", esc(s.Document.IDNumber.OrElse("N/A")))
	fmt.Fprintf(&b, "🏠 *Habitación:* %s\n", esc(s.Room))
	fmt.Fprintf(&b, "🕐 *Ingreso:* %s\n", s.CheckIn.Format(timeLayout))
	fmt.Fprintf(&b, "🕐 *Salida estimada:* %s\n", formatCheckOut(s.CheckIn, s.CheckOut))
	fmt.Fprintf(&b, "💰 *Precio:* %s\n", esc(s.Price))
	fmt.Fprintf(&b, "💳 *Pago:* %s\n", esc(s.Payment))
	fmt.Fprintf(&b, "📝 *Observaciones:* %s\n", esc(obs))
	return b.String()
}

func summaryKeyboard() [][]Button {
	return [][]Button{
		row(Button{Text: "✅ Confirmar y Guardar", Data: cbConfirm}),
		row(Button{Text: "✏️ Editar", Data: cbEdit}),
		row(btnRestart),
		row(btnCancel),
	}
}

func dailySummaryText(sum Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Resumen del día - %s*\n\n", sum.Date)
	fmt.Fprintf(&b, "👥 *Total de clientes:* %d\n", sum.Count)
	fmt.Fprintf(&b, "💰 *Ingresos totales:* S/%s\n\n", sum.Revenue.StringFixed(2))
	if recent := sum.Recent(5); len(recent) > 0 {
		b.WriteString("📋 *Registros del día:*\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "• %s - Hab. %s\n", esc(orNA(r.Name)), esc(orNA(r.Room)))
		}
	}
	return b.String()
}

func availabilityText(av Availability) string {
	var b strings.Builder
	b.WriteString("🏠 *Disponibilidad de Habitaciones*\n\n")
	writeRooms(&b, "🟢 *Disponibles:*", av.Available)
	b.WriteString("\n")
	writeRooms(&b, "🔴 *Ocupadas:*", av.Occupied)
	return b.String()
}

func writeRooms(b *strings.Builder, title string, rooms []string) {
	if len(rooms) == 0 {
		b.WriteString(title + " Ninguna\n")
		return
	}
	b.WriteString(title + "\n")
	for _, r := range rooms {
		fmt.Fprintf(b, "• Habitación %s\n", esc(r))
	}
}

func photosText(photos []Photo) string {
	var b strings.Builder
	b.WriteString("📷 *Últimas fotos de documentos*\n\n")
	for _, p := range photos {
		if p.Link != "" {
			fmt.Fprintf(&b, "• [%s](%s)\n", esc(p.Name), p.Link)
		} else {
			fmt.Fprintf(&b, "• %s\n", esc(p.Name))
		}
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
