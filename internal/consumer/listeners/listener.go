package listeners

type RowConsumer interface {
	Init()
	Consume()
}
