package httpapi

import (
	"net/http"
	"strconv"

	"calorina/internal/catalog"
	"calorina/internal/subscription"

	"github.com/gorilla/mux"
)

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.Catalog.Meals(catalog.Filter{
		Category: catalog.Category(q.Get("category")),
		Time:     catalog.Time(q.Get("time")),
	}))
}

func (s *Server) handleGetMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := s.Catalog.Meal(pathID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (s *Server) handleListDrinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Drinks(catalog.DrinkCategory(r.URL.Query().Get("category"))))
}

func (s *Server) handleAppearance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"backgroundImage": s.Catalog.BackgroundImage()})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.Sessions.Cart(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Summary())
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.Sessions.Cart(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c.Clear()
	writeJSON(w, http.StatusOK, c.Summary())
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MealID int64 `json:"mealId"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	meal, err := s.Catalog.Meal(req.MealID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.Sessions.Cart(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c.Add(meal)
	writeJSON(w, http.StatusOK, c.Summary())
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.Sessions.Cart(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := c.UpdateQuantity(pathID(r), req.Quantity); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Summary())
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := s.Sessions.Cart(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c.Remove(pathID(r))
	writeJSON(w, http.StatusOK, c.Summary())
}

func (s *Server) handleSubscriptionOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":     subscription.Currency,
		"governorates": subscription.Governorates,
	})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscription.Request
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sub, err := s.Sessions.SubscribeMeals(sessionID(r), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// pathID reads the {id} route variable; the route pattern guarantees digits.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
