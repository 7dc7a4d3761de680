package conversation

// User-facing texts. The bot speaks Russian regardless of the receipt
// language, matching the audience it was built for.
const (
	msgWelcome = "👋 Привет! Отправьте мне фотографии чеков из магазина, и я обработаю их.\n\n" +
		"Просто отправьте одну или несколько фотографий чеков."
	msgCommands = "📋 Доступные команды:\n\n" +
		"/start - Начать работу с ботом\n" +
		"/add_product - Добавить товар вручную\n" +
		"/help - Показать эту справку\n\n" +
		"💡 Вы также можете просто отправить фото чека для автоматической обработки."

	msgFirstPhoto   = "📸 Получено фото 1, ожидаю остальные..."
	msgPhotoN       = "📸 Получено фото %d..."
	msgProcessingN  = "📸 Обрабатываю %d фото... Пожалуйста, подождите."
	msgProcessing1  = "📸 Обрабатываю фото... Пожалуйста, подождите."
	msgBusyPending  = "⚠️ У вас уже есть необработанный чек. Подтвердите или отмените его, прежде чем отправлять новый."
	msgChooseLang   = "🌐 Пожалуйста, выберите язык чека:"
	msgEnterLang    = "🌐 Пожалуйста, введите название языка (например, Italian, Portuguese, Dutch):"
	msgLangEmpty    = "❌ Неверный формат. Пожалуйста, введите название языка (например, Italian, Portuguese, Dutch):"
	msgLangChosen   = "🌐 Выбран язык: %s. Обрабатываю фото..."
	msgChooseCur    = "💱 Пожалуйста, выберите валюту чека:"
	msgEnterCur     = "💱 Пожалуйста, введите трехбуквенный код валюты (например, GBP, JPY, CNY):"
	msgCurInvalid   = "❌ Неверный формат. Пожалуйста, введите трехбуквенный код валюты (например, GBP, JPY, CNY):"
	msgChooseItem   = "Выберите товар для редактирования:"
	msgChooseField  = "Что изменить?\n\nТовар: %s"
	msgEnterQty     = "Введите новое количество:"
	msgEnterPrice   = "Введите новую цену:"
	msgQtyInvalid   = "❌ Неверный формат. Введите число (например, 2 или 2.5):"
	msgQtyNotPos    = "❌ Количество должно быть больше нуля. Попробуйте еще раз:"
	msgPriceInvalid = "❌ Неверный формат. Введите число (например, 100.50):"
	msgPriceNeg     = "❌ Цена не может быть отрицательной. Попробуйте еще раз:"
	msgBadIndex     = "❌ Ошибка: неверный индекс товара."
	msgAllDeleted   = "❌ Все товары удалены. Отправьте новый чек."
	msgSaved        = "✅ Чек сохранен в %s."
	msgSaveFailed   = "❌ Ошибка при сохранении данных. Список товаров не потерян — попробуйте подтвердить еще раз."
	msgNothing      = "ℹ️ Нет чека, ожидающего подтверждения."
	msgCancelled    = "❌ Отменено. Можете отправить новый чек."

	msgErrRefused = "❌ Не удалось обработать чек. Модель не смогла прочитать изображение. Попробуйте отправить более четкое фото или другой язык."
	msgErrEmpty   = "❌ Не удалось извлечь данные из чека. Попробуйте отправить более четкое фото или проверьте, что чек читаемый."
	msgErrFormat  = "❌ Ошибка обработки изображения. Попробуйте отправить фото в формате JPEG или PNG."
	msgErrGeneric = "❌ Произошла ошибка при обработке чеков. Попробуйте еще раз или проверьте качество фото."

	msgManualStart    = "➕ Добавление товара вручную\n\nВведите название товара:"
	msgManualNoName   = "❌ Название товара не может быть пустым. Введите название товара:"
	msgManualCategory = "✅ Название: %s\n\n📂 Выберите категорию:"
	msgManualSubcat   = "✅ Категория: %s\n\n📁 Выберите подкатегорию:"
	msgManualPrice    = "✅ Категория: %s\n✅ Подкатегория: %s\n\nВведите цену товара (например, 100.50):"
	msgManualCur      = "✅ Цена: %s\n\n💱 Выберите валюту:"
	msgManualSaved    = "✅ Товар '%s' сохранен в %s.\n\n💰 Цена: %s %s\n📅 Дата: %s"
)
