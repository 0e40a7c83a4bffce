package domain

type Table string

const (
	TableListings    Table = "listings"
	TableCollections Table = "collections"
	TableSettlements Table = "settlements"
	TableCounters    Table = "counters"
)
