package httpapi

import (
	"time"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// HTTP DTO повторяют формат документов, который ждёт фронтенд:
// camelCase поля, _id как идентификатор

type productDTO struct {
	ID          string       `json:"_id,omitempty"`
	Name        string       `json:"name"`
	Brand       string       `json:"brand,omitempty"`
	Price       float64      `json:"price"`
	Image       string       `json:"image,omitempty"`
	Discount    float64      `json:"discount,omitempty"`
	Gender      string       `json:"gender,omitempty"`
	Category    string       `json:"category,omitempty"`
	Status      string       `json:"status,omitempty"`
	SellerEmail string       `json:"sellerEmail"`
	Date        time.Time    `json:"date,omitempty"`
	Quantity    int64        `json:"quantity"`
	TotalBought int64        `json:"totalBought"`
	Favorites   []string     `json:"favorites,omitempty"`
	Comments    []commentDTO `json:"commentsWithRatings,omitempty"`
}

type commentDTO struct {
	CommentID int64    `json:"commentsId"`
	Email     string   `json:"email"`
	Text      string   `json:"text"`
	Rating    int32    `json:"rating"`
	Likes     []string `json:"likes,omitempty"`
}

type productUpdateDTO struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Discount float64 `json:"discount"`
	Quantity int64   `json:"quantity"`
}

type cartItemDTO struct {
	ID            string  `json:"_id,omitempty"`
	CustomerEmail string  `json:"customerEmail"`
	ProductID     string  `json:"productId"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Image         string  `json:"image,omitempty"`
	Quantity      int64   `json:"quantity"`
}

type orderDTO struct {
	ID             string    `json:"_id"`
	IdempotencyKey string    `json:"idempotencyKey"`
	Email          string    `json:"email"`
	ProductIDs     []string  `json:"products"`
	Quantities     []int64   `json:"quantities"`
	CartItemIDs    []string  `json:"cartItems,omitempty"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Date           time.Time `json:"date"`
}

type userDTO struct {
	ID    string `json:"_id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
	Role  string `json:"role,omitempty"`
}

func toProductDTO(p repository.Product) productDTO {
	comments := make([]commentDTO, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, toCommentDTO(c))
	}
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       p.Price,
		Image:       p.Image,
		Discount:    p.Discount,
		Gender:      p.Gender,
		Category:    p.Category,
		Status:      p.Status,
		SellerEmail: p.SellerEmail,
		Date:        p.Date,
		Quantity:    p.Quantity,
		TotalBought: p.TotalBought,
		Favorites:   p.Favorites,
		Comments:    comments,
	}
}

func toProductDTOs(products []repository.Product) []productDTO {
	dtos := make([]productDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	return dtos
}

func fromProductDTO(d productDTO) repository.Product {
	return repository.Product{
		ID:          d.ID,
		Name:        d.Name,
		Brand:       d.Brand,
		Price:       d.Price,
		Image:       d.Image,
		Discount:    d.Discount,
		Gender:      d.Gender,
		Category:    d.Category,
		SellerEmail: d.SellerEmail,
		Quantity:    d.Quantity,
	}
}

func toCommentDTO(c repository.Comment) commentDTO {
	return commentDTO{
		CommentID: c.CommentID,
		Email:     c.Email,
		Text:      c.Text,
		Rating:    c.Rating,
		Likes:     c.Likes,
	}
}

func toCommentDTOs(comments []repository.Comment) []commentDTO {
	dtos := make([]commentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, toCommentDTO(c))
	}
	return dtos
}

func fromCommentDTO(d commentDTO) repository.Comment {
	return repository.Comment{
		CommentID: d.CommentID,
		Email:     d.Email,
		Text:      d.Text,
		Rating:    d.Rating,
	}
}

func fromProductUpdateDTO(d productUpdateDTO) repository.ProductUpdate {
	return repository.ProductUpdate{
		Name:     d.Name,
		Brand:    d.Brand,
		Price:    d.Price,
		Image:    d.Image,
		Discount: d.Discount,
		Quantity: d.Quantity,
	}
}

func toCartItemDTO(item repository.CartItem) cartItemDTO {
	return cartItemDTO{
		ID:            item.ID,
		CustomerEmail: item.CustomerEmail,
		ProductID:     item.ProductID,
		Name:          item.Name,
		Price:         item.Price,
		Image:         item.Image,
		Quantity:      item.Quantity,
	}
}

func toCartItemDTOs(items []repository.CartItem) []cartItemDTO {
	dtos := make([]cartItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toCartItemDTO(item))
	}
	return dtos
}

func fromCartItemDTO(d cartItemDTO) repository.CartItem {
	return repository.CartItem{
		CustomerEmail: d.CustomerEmail,
		ProductID:     d.ProductID,
		Name:          d.Name,
		Price:         d.Price,
		Image:         d.Image,
		Quantity:      d.Quantity,
	}
}

func toOrderDTOs(orders []repository.Order) []orderDTO {
	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, orderDTO{
			ID:             o.ID,
			IdempotencyKey: o.IdempotencyKey,
			Email:          o.Email,
			ProductIDs:     o.ProductIDs,
			Quantities:     o.Quantities,
			CartItemIDs:    o.CartItemIDs,
			Amount:         o.Amount,
			Currency:       o.Currency,
			Date:           o.Date,
		})
	}
	return dtos
}

func toUserDTOs(users []repository.User) []userDTO {
	dtos := make([]userDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userDTO{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
			Photo: u.Photo,
			Role:  u.Role,
		})
	}
	return dtos
}

func fromUserDTO(d userDTO) repository.User {
	return repository.User{
		Email: d.Email,
		Name:  d.Name,
		Photo: d.Photo,
	}
}
