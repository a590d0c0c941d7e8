// Package farm реализует игровую экономику фермы: каталог животных,
// кривые цен и производства, начисление ресурсов и операции
// купить/продать/собрать.
//
// catalog.go — статические данные каталога. Загружаются один раз при старте
// процесса и никогда не мутируются: это конфигурация, а не состояние.
package farm

import "github.com/shopspring/decimal"

// Kind — вид ресурса, который производят животные.
type Kind string

// Виды ресурсов
const (
	KindEggs     Kind = "eggs"
	KindFeathers Kind = "feathers"
	KindDown     Kind = "down"
	KindWool     Kind = "wool"
	KindMilk     Kind = "milk"
	KindMeat     Kind = "meat"
)

// Resource — описание ресурса: название для игрока и закупочная цена за единицу.
type Resource struct {
	Kind  Kind
	Name  string          // Русское название ("яйца")
	Emoji string          // Значок для сообщений
	Price decimal.Decimal // Цена продажи за единицу
}

// Resources — все ресурсы в порядке отображения.
var Resources = []Resource{
	{Kind: KindEggs, Name: "яйца", Emoji: "🥚", Price: decimal.RequireFromString("0.50")},
	{Kind: KindFeathers, Name: "перья", Emoji: "🪶", Price: decimal.RequireFromString("0.80")},
	{Kind: KindDown, Name: "пух", Emoji: "☁️", Price: decimal.RequireFromString("1.20")},
	{Kind: KindWool, Name: "шерсть", Emoji: "🧶", Price: decimal.RequireFromString("1.50")},
	{Kind: KindMilk, Name: "молоко", Emoji: "🥛", Price: decimal.RequireFromString("2.00")},
	{Kind: KindMeat, Name: "мясо", Emoji: "🥩", Price: decimal.RequireFromString("3.00")},
}

// Producer — тип животного из каталога. Неизменяемая запись:
// id, производимый ресурс, базовая цена и базовая производительность в минуту.
type Producer struct {
	ID             string
	Name           string // Название с эмодзи ("🐔 Курица")
	Kind           Kind
	BasePrice      decimal.Decimal
	BaseProduction decimal.Decimal // Единиц ресурса в минуту на одно животное
	Category       string          // Группа каталога ("птица", "скот")
}

// Producers — каталог животных в порядке отображения.
// Цены и нормы производства совпадают с исходной экономикой фермы.
var Producers = []Producer{
	{ID: "chicken", Name: "🐔 Курица", Kind: KindEggs, BasePrice: decimal.NewFromInt(50), BaseProduction: decimal.RequireFromString("0.1"), Category: "птица"},
	{ID: "duck", Name: "🦆 Утка", Kind: KindFeathers, BasePrice: decimal.NewFromInt(100), BaseProduction: decimal.RequireFromString("0.3"), Category: "птица"},
	{ID: "goose", Name: "🦢 Гусь", Kind: KindDown, BasePrice: decimal.NewFromInt(200), BaseProduction: decimal.RequireFromString("0.5"), Category: "птица"},
	{ID: "sheep", Name: "🐑 Овца", Kind: KindWool, BasePrice: decimal.NewFromInt(300), BaseProduction: decimal.RequireFromString("0.7"), Category: "скот"},
	{ID: "cow", Name: "🐄 Корова", Kind: KindMilk, BasePrice: decimal.NewFromInt(500), BaseProduction: decimal.NewFromInt(1), Category: "скот"},
	{ID: "pig", Name: "🐖 Свинья", Kind: KindMeat, BasePrice: decimal.NewFromInt(1000), BaseProduction: decimal.NewFromInt(2), Category: "скот"},
}

var (
	producerByID   = make(map[string]Producer, len(Producers))
	resourceByKind = make(map[Kind]Resource, len(Resources))
	resourceByName = make(map[string]Resource, len(Resources))
)

func init() {
	for _, p := range Producers {
		producerByID[p.ID] = p
	}
	for _, r := range Resources {
		resourceByKind[r.Kind] = r
		resourceByName[r.Name] = r
		resourceByName[string(r.Kind)] = r
	}
}

// ProducerByID ищет животное в каталоге по id.
func ProducerByID(id string) (Producer, bool) {
	p, ok := producerByID[id]
	return p, ok
}

// ResourceByKind возвращает описание ресурса по виду.
func ResourceByKind(kind Kind) (Resource, bool) {
	r, ok := resourceByKind[kind]
	return r, ok
}

// ResourceByName ищет ресурс по русскому названию или английскому ключу
// ("яйца" и "eggs" — один и тот же ресурс). Используется при разборе
// команды продажи.
func ResourceByName(name string) (Resource, bool) {
	r, ok := resourceByName[name]
	return r, ok
}
