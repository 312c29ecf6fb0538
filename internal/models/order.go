package models

import (
	"database/sql"
	"time"
)

// Statuts métier d'une commande. Le statut initial est posé par la valeur
// par défaut de la colonne order_status à l'insertion.
const (
	StatusRecu               = "Reçu"
	StatusEnPreparation      = "En Préparation"
	StatusPreteDispatch      = "Prête pour Dispatch"
	StatusEnCoursDeLivraison = "En cours de Livraison"
	StatusLivre              = "Livré"
	StatusARegler            = "À régler"
	StatusTermine            = "Terminé"
	StatusAnnule             = "Annulé"
)

// StatusDateColumns associe chaque statut à sa colonne d'horodatage.
// Une transition réussie tamponne uniquement la colonne du nouveau statut,
// les colonnes des statuts précédents restent en l'état.
var StatusDateColumns = map[string]string{
	StatusRecu:               "recu_date",
	StatusEnPreparation:      "en_preparation_date",
	StatusPreteDispatch:      "prete_pour_dispatch_date",
	StatusEnCoursDeLivraison: "en_cours_de_livraison_date",
	StatusLivre:              "livre_date",
	StatusARegler:            "a_regler_date",
	StatusTermine:            "termine_date",
	StatusAnnule:             "annule_date",
}

// StatusDateColumn renvoie la colonne d'horodatage d'un statut, ou false si
// le statut n'appartient pas à l'énumération.
func StatusDateColumn(status string) (string, bool) {
	col, ok := StatusDateColumns[status]
	return col, ok
}

// OrderProductInput est une ligne produit telle que reçue dans les requêtes
// de création et de réconciliation.
type OrderProductInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	VAT       float64 `json:"vat"`
}

// OrderInput est l'en-tête de commande tel que reçu dans les requêtes.
// Les champs à zéro valent « non fourni » pour la réconciliation : un champ
// omis (ou envoyé à 0) conserve la valeur déjà stockée.
type OrderInput struct {
	Company               string              `json:"company"`
	CreatedBy             int64               `json:"created_by"`
	DeliveryDate          string              `json:"delivery_date"`
	PaymentMethod         string              `json:"payment_method"`
	SubTotal              float64             `json:"sub_total"`
	Tax                   float64             `json:"tax"`
	TaxAmount             float64             `json:"tax_amount"`
	DeliveryFee           float64             `json:"delivery_fee"`
	Total                 float64             `json:"total"`
	UserDeliveryAddressID int64               `json:"user_delivery_address_id"`
	Address               string              `json:"address"`
	Phone                 string              `json:"phone"`
	Contact               string              `json:"contact"`
	Name                  string              `json:"name"`
	Products              []OrderProductInput `json:"products"`
}

// DeliveryAddress est l'instantané d'adresse imbriqué dans les réponses.
type DeliveryAddress struct {
	Phone       *string `json:"phone"`
	Contact     *string `json:"contact"`
	Address     *string `json:"address"`
	AddressType *string `json:"address_type"`
	City        *string `json:"city"`
	PostCode    *string `json:"post_code"`
	Message     *string `json:"message"`
}

// ProductImage est une image de produit attachée à une ligne de commande.
type ProductImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
}

// ProductLine est une ligne de commande recomposée : une entrée par produit,
// images agrégées depuis l'éclatement du LEFT JOIN. Un produit supprimé
// donne une ligne sans nom ni images.
type ProductLine struct {
	ProductID *int64         `json:"product_id"`
	Name      *string        `json:"name"`
	Quantity  int            `json:"quantity"`
	Price     float64        `json:"price"`
	VAT       float64        `json:"vat"`
	Images    []ProductImage `json:"images"`
}

// UserInfo est le propriétaire d'une commande dans la vue détail.
type UserInfo struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// OrderView est une commande telle que renvoyée par l'API : en-tête à plat,
// adresse de livraison imbriquée, lignes produits regroupées.
type OrderView struct {
	ID                    int64      `json:"id"`
	Company               *string    `json:"company"`
	CreatedBy             int64      `json:"created_by"`
	DeliveryDate          *time.Time `json:"delivery_date"`
	PaymentMethod         *string    `json:"payment_method"`
	SubTotal              float64    `json:"sub_total"`
	Tax                   float64    `json:"tax"`
	TaxAmount             float64    `json:"tax_amount"`
	DeliveryFee           float64    `json:"delivery_fee"`
	Total                 float64    `json:"total"`
	UserDeliveryAddressID *int64     `json:"user_delivery_address_id"`
	OrderStatus           string     `json:"order_status"`

	RecuDate               *time.Time `json:"recu_date"`
	EnPreparationDate      *time.Time `json:"en_preparation_date"`
	PreteDispatchDate      *time.Time `json:"prete_pour_dispatch_date"`
	EnCoursDeLivraisonDate *time.Time `json:"en_cours_de_livraison_date"`
	LivreDate              *time.Time `json:"livre_date"`
	AReglerDate            *time.Time `json:"a_regler_date"`
	TermineDate            *time.Time `json:"termine_date"`
	AnnuleDate             *time.Time `json:"annule_date"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	UserDeliveryAddress DeliveryAddress `json:"user_delivery_address"`
	Products            []ProductLine   `json:"products"`
	User                *UserInfo       `json:"userInfo,omitempty"`
}

// ArrayProduct est une ligne produit du lot /order/array : ligne de commande
// enrichie du nom, de l'unité et d'une image du produit.
type ArrayProduct struct {
	OrderID   int64   `json:"order_id"`
	ProductID *int64  `json:"product_id"`
	Name      *string `json:"name"`
	Unit      *string `json:"unit"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	VAT       float64 `json:"vat"`
	Image     string  `json:"image"`
}

// AggregatedProduct est l'entrée dédupliquée du listing produits global d'un
// lot de commandes : une entrée par produit, quantités sommées.
type AggregatedProduct struct {
	ProductID *int64  `json:"product_id"`
	Name      *string `json:"name"`
	Unit      *string `json:"unit"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// ScanOrderRow lit une ligne produite par database.OrderSelectColumns et la
// replie en OrderView : les colonnes d'adresse quittent l'en-tête pour
// l'objet imbriqué.
func ScanOrderRow(rows *sql.Rows) (*OrderView, error) {
	var (
		o            OrderView
		company      sql.NullString
		deliveryDate sql.NullTime
		payment      sql.NullString
		addressID    sql.NullInt64
		status       sql.NullString
		statusDates  [8]sql.NullTime
		updatedAt    sql.NullTime
		addr         [7]sql.NullString
	)

	err := rows.Scan(
		&o.ID, &company, &o.CreatedBy, &deliveryDate, &payment,
		&o.SubTotal, &o.Tax, &o.TaxAmount, &o.DeliveryFee, &o.Total,
		&addressID, &status,
		&statusDates[0], &statusDates[1], &statusDates[2], &statusDates[3],
		&statusDates[4], &statusDates[5], &statusDates[6], &statusDates[7],
		&o.CreatedAt, &updatedAt,
		&addr[0], &addr[1], &addr[2], &addr[3], &addr[4], &addr[5], &addr[6],
	)
	if err != nil {
		return nil, err
	}

	o.Company = nullString(company)
	o.DeliveryDate = nullTime(deliveryDate)
	o.PaymentMethod = nullString(payment)
	if addressID.Valid {
		o.UserDeliveryAddressID = &addressID.Int64
	}
	if status.Valid {
		o.OrderStatus = status.String
	}

	o.RecuDate = nullTime(statusDates[0])
	o.EnPreparationDate = nullTime(statusDates[1])
	o.PreteDispatchDate = nullTime(statusDates[2])
	o.EnCoursDeLivraisonDate = nullTime(statusDates[3])
	o.LivreDate = nullTime(statusDates[4])
	o.AReglerDate = nullTime(statusDates[5])
	o.TermineDate = nullTime(statusDates[6])
	o.AnnuleDate = nullTime(statusDates[7])
	o.UpdatedAt = nullTime(updatedAt)

	o.UserDeliveryAddress = DeliveryAddress{
		Phone:       nullString(addr[0]),
		Contact:     nullString(addr[1]),
		Address:     nullString(addr[2]),
		AddressType: nullString(addr[3]),
		City:        nullString(addr[4]),
		PostCode:    nullString(addr[5]),
		Message:     nullString(addr[6]),
	}

	o.Products = []ProductLine{}
	return &o, nil
}

// AddLineRow replie une ligne du fan-out produit×image dans la commande :
// une entrée par produit, images accumulées au fil des lignes.
func (o *OrderView) AddLineRow(productID sql.NullInt64, name sql.NullString, quantity int, price, vat float64, imageID sql.NullInt64, imageURL sql.NullString) {
	var line *ProductLine
	for i := range o.Products {
		if sameProduct(o.Products[i].ProductID, productID) {
			line = &o.Products[i]
			break
		}
	}

	if line == nil {
		entry := ProductLine{
			Quantity: quantity,
			Price:    price,
			VAT:      vat,
			Images:   []ProductImage{},
		}
		if productID.Valid {
			entry.ProductID = &productID.Int64
		}
		if name.Valid {
			entry.Name = &name.String
		}
		o.Products = append(o.Products, entry)
		line = &o.Products[len(o.Products)-1]
	}

	if imageID.Valid {
		line.Images = append(line.Images, ProductImage{
			ID:       imageID.Int64,
			ImageURL: imageURL.String,
		})
	}
}

func sameProduct(a *int64, b sql.NullInt64) bool {
	if a == nil {
		return !b.Valid
	}
	return b.Valid && *a == b.Int64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
