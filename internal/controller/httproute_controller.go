package controller

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"k8s.io/client-go/util/retry"
)

const (
	finalizerName = "dns.yk/bridge-cleanup"

	bridgeIDAnnotation = "dns.yk/bridge-id"
	ownerIDAnnotation  = "dns.yk/owner-id"

	// Written by the controller.
	managedBridgeAnnotation = "dns.yk/managed-bridge"
	endpointAnnotation      = "dns.yk/endpoint"
)

// RecordManager manages the DNS record of a bridge.
type RecordManager interface {
	CreateRecord(ctx context.Context, bridgeID string) (bool, error)
	DeleteRecord(ctx context.Context, bridgeID string) (bool, error)
	BuildEndpointURL(bridgeID, ownerID string) string
}

// HTTPRouteReconciler keeps a DNS record for every HTTPRoute that exposes a bridge.
type HTTPRouteReconciler struct {
	client.Client
	APIReader client.Reader
	Log       logr.Logger
	DNS       RecordManager
}

func (r *HTTPRouteReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var route gatewayv1.HTTPRoute
	if err := r.APIReader.Get(ctx, req.NamespacedName, &route); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	bridgeID, ownerID := bridgeOf(&route)
	managed := route.Annotations[managedBridgeAnnotation]
	log := r.Log.WithValues("route", req.NamespacedName, "bridge", bridgeID)

	// Handle deletion, or the route no longer exposing a bridge.
	if !route.DeletionTimestamp.IsZero() || bridgeID == "" {
		if !controllerutil.ContainsFinalizer(&route, finalizerName) {
			return ctrl.Result{}, nil
		}
		if managed == "" {
			managed = bridgeID
		}
		if managed != "" {
			log.Info("deleting DNS record for bridge", "managed", managed)
			if err := r.deleteRecord(ctx, managed); err != nil {
				return ctrl.Result{}, err
			}
		}

		err := r.updateRoute(ctx, req, func(route *gatewayv1.HTTPRoute) {
			controllerutil.RemoveFinalizer(route, finalizerName)
			delete(route.Annotations, managedBridgeAnnotation)
			delete(route.Annotations, endpointAnnotation)
		})
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to remove finalizer: %w", err)
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(&route, finalizerName) {
		err := r.updateRoute(ctx, req, func(route *gatewayv1.HTTPRoute) {
			controllerutil.AddFinalizer(route, finalizerName)
		})
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to add finalizer: %w", err)
		}
		return ctrl.Result{}, nil
	}

	// The bridge ID changed: the old record is no longer ours to keep.
	if managed != "" && managed != bridgeID {
		log.Info("bridge changed on HTTPRoute, deleting previous DNS record", "previous", managed)
		if err := r.deleteRecord(ctx, managed); err != nil {
			return ctrl.Result{}, err
		}
	}

	ok, err := r.DNS.CreateRecord(ctx, bridgeID)
	observe(actionCreate, err)
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("creating DNS record for bridge %s: %w", bridgeID, err)
	}
	if !ok {
		return ctrl.Result{}, fmt.Errorf("creating DNS record for bridge %s: not acknowledged", bridgeID)
	}

	endpoint := r.DNS.BuildEndpointURL(bridgeID, ownerID)
	if managed != bridgeID || route.Annotations[endpointAnnotation] != endpoint {
		err := r.updateRoute(ctx, req, func(route *gatewayv1.HTTPRoute) {
			if route.Annotations == nil {
				route.Annotations = make(map[string]string)
			}
			route.Annotations[managedBridgeAnnotation] = bridgeID
			route.Annotations[endpointAnnotation] = endpoint
		})
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to update bridge annotations: %w", err)
		}
		log.Info("bridge endpoint published", "endpoint", endpoint)
	}

	return ctrl.Result{}, nil
}

func (r *HTTPRouteReconciler) deleteRecord(ctx context.Context, bridgeID string) error {
	ok, err := r.DNS.DeleteRecord(ctx, bridgeID)
	observe(actionDelete, err)
	if err != nil {
		return fmt.Errorf("deleting DNS record for bridge %s: %w", bridgeID, err)
	}
	if !ok {
		return fmt.Errorf("deleting DNS record for bridge %s: not acknowledged", bridgeID)
	}
	r.Log.Info("deleted DNS record", "bridge", bridgeID)
	return nil
}

// updateRoute re-reads the route and applies mutate, retrying on conflicts.
func (r *HTTPRouteReconciler) updateRoute(ctx context.Context, req ctrl.Request, mutate func(*gatewayv1.HTTPRoute)) error {
	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		var route gatewayv1.HTTPRoute
		if err := r.APIReader.Get(ctx, req.NamespacedName, &route); err != nil {
			return err
		}
		mutate(&route)
		return r.Update(ctx, &route)
	})
}

func (r *HTTPRouteReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&gatewayv1.HTTPRoute{}).
		WithEventFilter(predicate.And[client.Object](
			predicate.NewPredicateFuncs(exposesBridge),
			predicate.Funcs{
				UpdateFunc: func(e event.UpdateEvent) bool {
					// Reconcile if the Spec (Generation) has changed.
					if e.ObjectOld.GetGeneration() != e.ObjectNew.GetGeneration() {
						return true
					}
					// Also reconcile if finalizers have changed (e.g. our finalizer was added).
					if len(e.ObjectOld.GetFinalizers()) != len(e.ObjectNew.GetFinalizers()) {
						return true
					}
					// Or if the bridge identity moved.
					return bridgeChanged(e.ObjectOld, e.ObjectNew)
				},
			},
		)).
		Complete(r)
}
