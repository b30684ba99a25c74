package controller

import (
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
)

// bridgeOf returns the bridge exposed by obj. The owner defaults to the
// object's namespace.
func bridgeOf(obj client.Object) (bridgeID, ownerID string) {
	annotations := obj.GetAnnotations()
	bridgeID = annotations[bridgeIDAnnotation]
	ownerID = annotations[ownerIDAnnotation]
	if ownerID == "" {
		ownerID = obj.GetNamespace()
	}
	return bridgeID, ownerID
}

// exposesBridge selects routes that carry a bridge or still hold our finalizer.
func exposesBridge(obj client.Object) bool {
	if id, _ := bridgeOf(obj); id != "" {
		return true
	}
	return controllerutil.ContainsFinalizer(obj, finalizerName)
}

func bridgeChanged(oldObj, newObj client.Object) bool {
	oldBridge, oldOwner := bridgeOf(oldObj)
	newBridge, newOwner := bridgeOf(newObj)
	return oldBridge != newBridge || oldOwner != newOwner
}
