package contest

// Statistics is the aggregate snapshot shown on the admin panel. JSON names follow the panel's contract.
type Statistics struct {
	TotalRegistrations    int            `json:"total_inscritos"`
	ActiveVenues          int            `json:"total_sedes"`
	ActiveRounds          int            `json:"total_rondas"`
	PendingRegistrations  int            `json:"inscritos_pendientes"`
	ApprovedRegistrations int            `json:"inscritos_aprobados"`
	RejectedRegistrations int            `json:"inscritos_rechazados"`
	TotalVideos           int            `json:"videos_subidos"`
	ApprovedVideos        int            `json:"videos_aprobados"`
	ByCategory            map[string]int `json:"inscritos_por_categoria"`
	ByVenue               map[string]int `json:"inscritos_por_sede"`
	ByMunicipality        map[string]int `json:"inscritos_por_municipio"`
}

// GroupCount is one row of a GROUP BY projection.
type GroupCount struct {
	Key   string `db:"group_key"`
	Count int    `db:"total"`
}
